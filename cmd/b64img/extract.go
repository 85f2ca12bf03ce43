package main

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	b64img "github.com/nicholasgasior/b64img-go"
)

var errNoImages = errors.New("no base64 image data found")

func newExtractCmd(a *app) *cobra.Command {
	var (
		charset string
		asJSON  bool
		outDir  string
	)

	cmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "Find base64 images in text (reads stdin if file is omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			req := b64img.Request{Action: b64img.ActionExtract, Bytes: data}
			if charset != "" {
				req.Options = map[string]any{"charset": charset}
			}
			msg, err := a.run(cmd.Context(), req)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(msg)
			}
			if len(msg.Results) == 0 {
				return errNoImages
			}

			for i, img := range msg.Results {
				fmt.Fprintf(a.stdout, "#%d\t%s\t%s\t%s\n", i+1, img.Source,
					b64img.FormatName(img.MIMEType), b64img.FormatFileSize(b64img.DecodedSize(img.Base64)))
				if outDir == "" {
					continue
				}
				path, err := writeImage(outDir, i+1, img)
				if err != nil {
					return err
				}
				a.logger.Info().Str("path", path).Str("mime", img.MIMEType).Msg("image written")
			}
			a.summary("scanned", msg.Metrics)
			return nil
		},
	}

	cmd.Flags().StringVar(&charset, "charset", "", "Charset of the input (detected when empty)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw result message as JSON")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory to write decoded images to")
	return cmd
}

// writeImage decodes img into dir. The file extension comes from the decoded
// bytes when they are recognisable, otherwise from the declared MIME type.
func writeImage(dir string, n int, img b64img.ExtractedImage) (string, error) {
	data, err := base64.StdEncoding.DecodeString(img.Base64)
	if err != nil {
		return "", fmt.Errorf("decode image #%d: %w", n, err)
	}

	ext := "." + b64img.Extension(img.MIMEType)
	if mtype := mimetype.Detect(data); strings.HasPrefix(mtype.String(), "image/") && mtype.Extension() != "" {
		ext = mtype.Extension()
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("image_%03d%s", n, ext))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return path, nil
}

// readInput reads the file named by args[0], or stdin when args is empty or
// names "-".
func readInput(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}
