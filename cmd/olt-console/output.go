package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/goccy/go-yaml"

	southbound "github.com/nanoncore/olt-console"
	"github.com/nanoncore/olt-console/types"
	"github.com/nanoncore/olt-console/vendors/huawei"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

type deviceRow struct {
	Name    string `yaml:"name"`
	Vendor  string `yaml:"vendor"`
	Address string `yaml:"address"`
}

// print writes v as YAML, or runs text for the default output.
func (a *app) print(v interface{}, text func()) error {
	switch a.opts.Output {
	case "", "text":
		text()
		return nil
	case "yaml":
		out, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err
	}
	return fmt.Errorf("unknown output format %q", a.opts.Output)
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
}

func printDevices(rows []deviceRow) {
	w := newTable()
	fmt.Fprintln(w, "NAME\tVENDOR\tADDRESS")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, r.Vendor, r.Address)
	}
	w.Flush()
}

func printVersion(info southbound.VersionInfo) {
	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	w := newTable()
	for _, k := range keys {
		fmt.Fprintf(w, "%s\t%s\n", bold(k), info[k])
	}
	w.Flush()
}

func sortRecords(records map[string]southbound.OnuRecord) []southbound.OnuRecord {
	sorted := make([]southbound.OnuRecord, 0, len(records))
	for _, r := range records {
		sorted = append(sorted, r)
	}
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Frame != b.Frame {
			return a.Frame < b.Frame
		}
		if a.Board != b.Board {
			return a.Board < b.Board
		}
		if a.Port != b.Port {
			return a.Port < b.Port
		}
		return a.OnuID < b.OnuID
	})
	return sorted
}

func printInventory(records []southbound.OnuRecord) {
	w := newTable()
	fmt.Fprintln(w, "F/S/P\tONT\tSERIAL\tCONTROL\tRUN\tCONFIG\tMATCH")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			r.PONPort(), r.OnuID, huawei.DecodeHexSerial(r.Serial),
			r.ControlFlag, runState(r.RunState), r.ConfigState, r.MatchState)
	}
	w.Flush()
	fmt.Printf("%d ONTs\n", len(records))
}

func runState(s string) string {
	switch s {
	case "online", "up":
		return green(s)
	case "offline", "down":
		return red(s)
	}
	return yellow(s)
}

func printServicePorts(ports []southbound.ServicePort) {
	w := newTable()
	fmt.Fprintln(w, "INDEX\tVLAN\tATTR\tGEM\tUSER-VLAN\tRX\tTX")
	for _, sp := range ports {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			intCell(sp.ID), intCell(sp.VLAN), sp.VLANAttribute, intCell(sp.GemPort),
			intCell(sp.UserVLAN), intCell(sp.InboundTrafficTableID), intCell(sp.OutboundTrafficTableID))
	}
	w.Flush()
}

func intCell(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(*v)
}

func printBulkResult(result *types.BulkResult) {
	w := newTable()
	fmt.Fprintln(w, "SERIAL\tRESULT\tPON\tONT\tSERVICE-PORTS\tERROR")
	for _, r := range result.Results {
		if r.Success {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t\n", r.Serial, green("ok"), r.PONPort, r.ONUID, r.ServicePorts)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t-\t%d\t%s\n", r.Serial, red(r.ErrorCode), r.PONPort, r.ServicePorts, r.Error)
	}
	w.Flush()
	fmt.Printf("%s succeeded, %s failed\n", green(result.Succeeded), red(result.Failed))
}

func printStatus(s *southbound.SystemStatus) {
	w := newTable()
	fmt.Fprintf(w, "%s\t%s\n", bold("name"), s.Name)
	fmt.Fprintf(w, "%s\t%s\n", bold("description"), s.Description)
	fmt.Fprintf(w, "%s\t%s\n", bold("uptime"), s.Uptime)
	fmt.Fprintf(w, "%s\t%s\n", bold("cpu"), percent(s.CPUPercent))
	fmt.Fprintf(w, "%s\t%s\n", bold("memory"), percent(s.MemoryPercent))
	w.Flush()
}

func percent(v float64) string {
	if v < 0 {
		return yellow("n/a")
	}
	return fmt.Sprintf("%.0f%%", v)
}
