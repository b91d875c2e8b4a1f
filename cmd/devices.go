// Package cmd holds the thermview subcommands.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/smazurov/thermview/internal/devices"
	"github.com/spf13/cobra"
)

// CreateDevicesCmd creates the devices command, which lists capture devices
// and marks the ones that deliver raw thermal frames.
func CreateDevicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List V4L2 capture devices",
		Long:  `List V4L2 capture devices with their pixel formats. Devices marked thermal offer native YUYV at 256x384 and can be passed as the capture device.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			found, err := devices.Describe(devices.NewDetector())
			if err != nil {
				return fmt.Errorf("failed to list devices: %w", err)
			}
			if asJSON {
				return writeDevicesJSON(cmd.OutOrStdout(), found)
			}
			return writeDevicesTable(cmd.OutOrStdout(), found)
		},
	}
	cmd.Flags().Bool("json", false, "Print the device list as JSON")
	return cmd
}

func writeDevicesJSON(w io.Writer, found []devices.DeviceInfo) error {
	if found == nil {
		found = []devices.DeviceInfo{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(found)
}

func writeDevicesTable(w io.Writer, found []devices.DeviceInfo) error {
	if len(found) == 0 {
		_, err := fmt.Fprintln(w, "No capture devices found")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tNAME\tTHERMAL\tFORMATS")
	for _, d := range found {
		formats := make([]string, 0, len(d.Formats))
		for _, f := range d.Formats {
			name := f.FourCC
			if f.Emulated {
				name += "*"
			}
			formats = append(formats, name)
		}
		thermal := "no"
		if d.Thermal {
			thermal = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.DevicePath, d.DeviceName, thermal, strings.Join(formats, " "))
	}
	return tw.Flush()
}
