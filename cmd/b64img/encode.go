package main

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	b64img "github.com/nicholasgasior/b64img-go"
)

func newEncodeCmd(a *app) *cobra.Command {
	var (
		raw      bool
		mimeType string
	)

	cmd := &cobra.Command{
		Use:   "encode [file]",
		Short: "Encode an image as a base64 data URL (reads stdin if file is omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			msg, err := a.run(cmd.Context(), b64img.Request{Action: b64img.ActionEncode, Bytes: data})
			if err != nil {
				return err
			}

			if raw {
				fmt.Fprintln(a.stdout, msg.Base64)
			} else {
				if mimeType == "" {
					mimeType = detectImageMIME(data)
				}
				fmt.Fprintln(a.stdout, b64img.DataURL(mimeType, msg.Base64))
			}
			a.summary("encoded", msg.Metrics)
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print bare base64 without the data: prefix")
	cmd.Flags().StringVarP(&mimeType, "mime-type", "m", "", "MIME type for the data URL (detected when empty)")
	return cmd
}

// detectImageMIME sniffs data, falling back to image/png for anything that is
// not recognisably an image.
func detectImageMIME(data []byte) string {
	mtype := mimetype.Detect(data)
	for m := mtype; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "image/") {
			return m.String()
		}
	}
	return "image/png"
}
