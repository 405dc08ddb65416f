package common

import "testing"

func TestStripANSI(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "no ANSI codes",
			input: "MA5600T(config)#",
			want:  "MA5600T(config)#",
		},
		{
			name:  "cursor back after pager",
			input: "\x1b[37D\x1b[37D  0/ 1/2",
			want:  "  0/ 1/2",
		},
		{
			name:  "color reset",
			input: "\x1b[1;31;40mFailure\x1b[0m",
			want:  "Failure",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripANSI(tt.input)
			if got != tt.want {
				t.Errorf("StripANSI() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCleanConsole(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "carriage returns",
			input: "line1\r\nline2\r\n",
			want:  "line1\nline2\n",
		},
		{
			name:  "pager line",
			input: "row1\n  ---- More ( Press 'Q' to break ) ----\x1b[37D\nrow2",
			want:  "row1\n  \nrow2",
		},
		{
			name:  "parameter prompt",
			input: "display ont info 0 all\n{ <cr>|ontid<U><0,255> }:\n  F/S/P",
			want:  "display ont info 0 all\n  F/S/P",
		},
		{
			name:  "plain text untouched",
			input: "  Uptime is 12 day(s)",
			want:  "  Uptime is 12 day(s)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanConsole(tt.input)
			if got != tt.want {
				t.Errorf("CleanConsole() = %q, want %q", got, tt.want)
			}
		})
	}
}
