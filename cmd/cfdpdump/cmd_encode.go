package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/caio-sobreiro/cfdpnet/pdu"
)

func newEncodeCommand() *cobra.Command {
	var (
		file   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode YAML PDU documents",
		Long: "Read YAML documents in the form printed by decode from --file (\"-\" for stdin). " +
			"The data field length is taken from the data; header_size and directive are ignored. " +
			"Prints one hex line per PDU, or writes the binary stream to --output.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			pdus, err := readDocuments(in)
			if err != nil {
				return err
			}

			if output == "" {
				for _, p := range pdus {
					out, err := p.Encode()
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(out))
				}
				return nil
			}

			f, err := os.Create(output)
			if err != nil {
				return err
			}
			w := pdu.NewWriter(f)
			for _, p := range pdus {
				if err := w.WritePDU(p); err != nil {
					f.Close()
					return err
				}
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "YAML input (\"-\" for stdin)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write binary PDUs to this file instead of hex to stdout")
	return cmd
}

func readDocuments(r io.Reader) ([]*pdu.PDU, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var pdus []*pdu.PDU
	for i := 1; ; i++ {
		var doc pduDocument
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		p, err := doc.build()
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		pdus = append(pdus, p)
	}
	if len(pdus) == 0 {
		return nil, errors.New("no PDU documents in input")
	}
	return pdus, nil
}
