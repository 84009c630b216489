package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/caio-sobreiro/cfdpnet/interfaces"
	"github.com/caio-sobreiro/cfdpnet/metrics"
	"github.com/caio-sobreiro/cfdpnet/pdu"
	"github.com/caio-sobreiro/cfdpnet/services"
)

type decodeOptions struct {
	file         string
	maxDataField uint16
	stats        bool
}

func newDecodeCommand() *cobra.Command {
	var opts decodeOptions

	cmd := &cobra.Command{
		Use:   "decode [hex...]",
		Short: "Decode PDUs to YAML",
		Long: "Decode each hex argument as one PDU, or read back-to-back binary PDUs " +
			"from --file (\"-\" for stdin), and print one YAML document per PDU.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (opts.file == "") == (len(args) == 0) {
				return fmt.Errorf("pass either hex arguments or --file")
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()

			if opts.file != "" {
				return decodeStream(cmd.Context(), cmd, enc, opts)
			}
			return decodeArgs(enc, args)
		},
	}
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "binary file of back-to-back PDUs (\"-\" for stdin)")
	cmd.Flags().Uint16Var(&opts.maxDataField, "max-data-field", 0, "reject PDUs with a larger data field (0 = no limit)")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "print decode counters to stderr when done")
	return cmd
}

func decodeArgs(enc *yaml.Encoder, args []string) error {
	for i, arg := range args {
		buf, err := decodeHex(arg)
		if err != nil {
			return fmt.Errorf("argument %d: %w", i+1, err)
		}
		p, err := pdu.Decode(buf)
		if err != nil {
			return fmt.Errorf("argument %d: %w", i+1, err)
		}
		if extra := len(buf) - p.Size(); extra > 0 {
			slog.Warn("Ignoring trailing bytes", "argument", i+1, "bytes", extra)
		}
		if err := enc.Encode(newDocument(p)); err != nil {
			return err
		}
	}
	return nil
}

func decodeStream(ctx context.Context, cmd *cobra.Command, enc *yaml.Encoder, opts decodeOptions) error {
	var in io.Reader = cmd.InOrStdin()
	if opts.file != "-" {
		f, err := os.Open(opts.file)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		return err
	}

	readerOpts := []pdu.Option{pdu.WithMetrics(m)}
	if opts.maxDataField > 0 {
		readerOpts = append(readerOpts, pdu.WithMaxDataFieldLength(opts.maxDataField))
	}

	registry := services.NewRegistry(services.WithMetrics(m))
	registry.SetFallback(interfaces.PDUHandlerFunc(func(ctx context.Context, p *pdu.PDU) error {
		return enc.Encode(newDocument(p))
	}))

	err = registry.Serve(ctx, pdu.NewReader(in, readerOpts...))
	if opts.stats {
		if statErr := writeStats(cmd.ErrOrStderr(), reg); statErr != nil {
			slog.Warn("Failed to gather decode counters", "error", statErr)
		}
	}
	return err
}

func writeStats(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			if metric.GetCounter() == nil {
				continue
			}
			labels := ""
			for _, pair := range metric.GetLabel() {
				labels += fmt.Sprintf(" %s=%s", pair.GetName(), pair.GetValue())
			}
			fmt.Fprintf(w, "%s%s %v\n", family.GetName(), labels, metric.GetCounter().GetValue())
		}
	}
	return nil
}
