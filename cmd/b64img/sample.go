package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	b64img "github.com/nicholasgasior/b64img-go"
)

func newSampleCmd(a *app) *cobra.Command {
	var (
		sizeMB int
		output string
	)

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Generate a large synthetic base64 payload for throughput testing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := a.run(cmd.Context(), b64img.Request{Action: b64img.ActionGenerateSample, SizeMB: sizeMB})
			if err != nil {
				return err
			}

			if output != "" {
				if err := os.WriteFile(output, []byte(msg.Base64), 0o644); err != nil {
					return fmt.Errorf("write sample: %w", err)
				}
			} else {
				fmt.Fprintln(a.stdout, msg.Base64)
			}
			a.summary("generated", msg.Metrics)
			return nil
		},
	}

	cmd.Flags().IntVarP(&sizeMB, "size", "s", 1, "Payload size in megabytes")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}
