package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	southbound "github.com/nanoncore/olt-console"
	"github.com/nanoncore/olt-console/types"
)

func devicesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List configured devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([]deviceRow, 0, len(a.cfg.Devices))
			for _, name := range a.cfg.DeviceNames() {
				eq, err := a.cfg.Equipment(name)
				if err != nil {
					return err
				}
				rows = append(rows, deviceRow{Name: name, Vendor: string(eq.Vendor), Address: fmt.Sprintf("%s:%d", eq.Address, eq.Port)})
			}
			return a.print(rows, func() { printDevices(rows) })
		},
	}
}

func sysinfoCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sysinfo",
		Short: "Show the device software version and uptime",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			olt, err := a.olt()
			if err != nil {
				return err
			}
			defer olt.Close()

			info, err := olt.GetVersion(ctx)
			if err != nil {
				return err
			}
			return a.print(info, func() { printVersion(info) })
		},
	}
}

func inventoryCommand(a *app) *cobra.Command {
	var frame, board, port int

	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "List the ONTs registered on the OLT",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter southbound.InventoryFilter
			if cmd.Flags().Changed("frame") {
				filter.Frame = types.IntPtr(frame)
			}
			if cmd.Flags().Changed("board") {
				filter.Board = types.IntPtr(board)
			}
			if cmd.Flags().Changed("port") {
				filter.Port = types.IntPtr(port)
			}

			ctx, cancel := signalContext()
			defer cancel()

			olt, err := a.olt()
			if err != nil {
				return err
			}
			defer olt.Close()

			records, err := olt.GetOnuInventory(ctx, filter)
			if err != nil {
				return err
			}
			if records == nil {
				return fmt.Errorf("inventory of %s failed, see log", olt.Host())
			}
			sorted := sortRecords(records)
			return a.print(sorted, func() { printInventory(sorted) })
		},
	}

	cmd.Flags().IntVar(&frame, "frame", 0, "Frame number")
	cmd.Flags().IntVar(&board, "board", 0, "Board (slot) number, requires --frame")
	cmd.Flags().IntVar(&port, "port", 0, "PON port number, requires --frame and --board")
	return cmd
}

func lookupCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup SERIAL",
		Short: "Find where an ONT is registered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			olt, err := a.olt()
			if err != nil {
				return err
			}
			defer olt.Close()

			rec, err := olt.GetOnuBySerial(ctx, args[0])
			if err != nil {
				return err
			}
			if rec == nil {
				return fmt.Errorf("ONT %s is not registered on %s", args[0], olt.Host())
			}
			return a.print(rec, func() { printInventory([]southbound.OnuRecord{*rec}) })
		},
	}
}

func servicePortsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "service-ports SERIAL",
		Short: "List the service ports of an ONT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			olt, err := a.olt()
			if err != nil {
				return err
			}
			defer olt.Close()

			rec, err := olt.GetOnuBySerial(ctx, args[0])
			if err != nil {
				return err
			}
			if rec == nil {
				return fmt.Errorf("ONT %s is not registered on %s", args[0], olt.Host())
			}

			onu := &types.Onu{
				Serial: rec.Serial,
				Frame:  types.IntPtr(rec.Frame),
				Board:  types.IntPtr(rec.Board),
				Port:   types.IntPtr(rec.Port),
				OnuID:  types.IntPtr(rec.OnuID),
			}
			ports, err := olt.GetServicePorts(ctx, onu)
			if err != nil {
				return err
			}
			return a.print(ports, func() { printServicePorts(ports) })
		},
	}
}

// batchFile is the document read by the provision command.
type batchFile struct {
	Onus []*types.Onu `yaml:"onus"`
}

func provisionCommand(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "provision FILE",
		Short: "Register the ONTs and service ports listed in a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, err := readBatch(args[0])
			if err != nil {
				return err
			}
			if dryRun {
				for i, onu := range batch.Onus {
					if err := onu.Validate(); err != nil {
						return fmt.Errorf("onus[%d]: %w", i, err)
					}
					if err := onu.ValidateServicePorts(); err != nil {
						return fmt.Errorf("onus[%d]: %w", i, err)
					}
				}
				fmt.Printf("%d ONTs valid\n", len(batch.Onus))
				return nil
			}

			ctx, cancel := signalContext()
			defer cancel()

			olt, err := a.olt()
			if err != nil {
				return err
			}
			defer olt.Close()

			result := olt.ProvisionBatch(ctx, batch.Onus)
			if err := a.print(result, func() { printBulkResult(result) }); err != nil {
				return err
			}
			if result.Failed > 0 {
				return fmt.Errorf("%d of %d ONTs failed", result.Failed, len(result.Results))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only validate the file")
	return cmd
}

func readBatch(path string) (*batchFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error reading provisioning file: %w", err)
	}
	defer f.Close()

	var batch batchFile
	if err := yaml.NewDecoder(f, yaml.DisallowUnknownField()).Decode(&batch); err != nil {
		return nil, fmt.Errorf("error parsing provisioning file: %s", yaml.FormatError(err, false, true))
	}
	return &batch, nil
}

func statusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Read system health over SNMP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eq, err := a.equipment()
			if err != nil {
				return err
			}
			probe, err := southbound.NewStatusProbe(eq)
			if err != nil {
				return err
			}
			defer probe.Close()

			ctx, cancel := signalContext()
			defer cancel()

			status, err := probe.Status(ctx)
			if err != nil {
				return err
			}
			return a.print(status, func() { printStatus(status) })
		},
	}
}
