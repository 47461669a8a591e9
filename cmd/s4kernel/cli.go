package main

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/cmplx"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/lvlath-s4/discretize"
	"github.com/katalvlaran/lvlath-s4/hippo"
	"github.com/katalvlaran/lvlath-s4/kernel"
	"github.com/katalvlaran/lvlath-s4/matrix"
	"github.com/katalvlaran/lvlath-s4/s4"
	"github.com/katalvlaran/lvlath-s4/scan"
)

// NewCLI builds the s4kernel command tree.
func NewCLI() *cobra.Command {
	var verbose bool
	rootCmd := &cobra.Command{
		Use:   "s4kernel",
		Short: "Inspect HiPPO/DPLR operators and run S4 layers",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Disable usage printing on errors
			cmd.SilenceUsage = true
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log layer rebuilds")

	logger := func(cmd *cobra.Command) *slog.Logger {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	}

	hippoCmd := &cobra.Command{
		Use:   "hippo",
		Short: "Print the HiPPO-LegS matrix",
		Args:  cobra.NoArgs,
		RunE:  HiPPOHandler,
	}
	hippoCmd.Flags().Int("n", 4, "State size")

	dplrCmd := &cobra.Command{
		Use:   "dplr",
		Short: "Print the DPLR eigenvalues and the reconstruction error",
		Args:  cobra.NoArgs,
		RunE:  DPLRHandler,
	}
	dplrCmd.Flags().Int("n", 8, "State size")

	kernelCmd := &cobra.Command{
		Use:   "kernel",
		Short: "Generate the convolution kernel of a seeded layer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return KernelHandler(cmd, logger(cmd))
		},
	}
	kernelCmd.Flags().Int("n", 8, "State size")
	kernelCmd.Flags().Int("l", 16, "Sequence length")
	kernelCmd.Flags().Float64("step", 0.1, "Step size Δ")
	kernelCmd.Flags().Uint64("seed", 1, "Random seed for the readout")
	kernelCmd.Flags().String("method", kernel.MethodDPLR.String(), "Kernel method (dplr|unrolled)")

	bilinearCmd := &cobra.Command{
		Use:   "bilinear",
		Short: "Discretize dense HiPPO with the bilinear transform and print its impulse response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return BilinearHandler(cmd, logger(cmd))
		},
	}
	bilinearCmd.Flags().Int("n", 4, "State size")
	bilinearCmd.Flags().Int("l", 8, "Number of samples")
	bilinearCmd.Flags().Float64("step", 0.1, "Step size Δ")

	forwardCmd := &cobra.Command{
		Use:   "forward [flags] -- u0 u1 ...",
		Short: "Run one forward pass of a seeded layer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ForwardHandler(cmd, args, logger(cmd))
		},
	}
	forwardCmd.Flags().Int("n", 8, "State size")
	forwardCmd.Flags().String("mode", s4.Train.String(), "Layer mode (train|decode)")
	forwardCmd.Flags().Uint64("seed", 1, "Random seed")
	forwardCmd.Flags().Float64("d", s4.DefaultD, "Skip weight D")

	rootCmd.AddCommand(hippoCmd, dplrCmd, kernelCmd, bilinearCmd, forwardCmd)

	return rootCmd
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	if header != nil {
		table.SetHeader(header)
	}
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")

	return table
}

func fmtFloat(v float64) string { return strconv.FormatFloat(v, 'g', 6, 64) }

// HiPPOHandler prints HiPPO(n).
func HiPPOHandler(cmd *cobra.Command, args []string) error {
	n, err := cmd.Flags().GetInt("n")
	if err != nil {
		return err
	}
	a, err := hippo.HiPPO(n)
	if err != nil {
		return err
	}
	data := make([][]string, 0, n)
	for _, row := range splitRows(a.Real(), n) {
		cells := make([]string, n)
		for j, v := range row {
			cells[j] = fmtFloat(v)
		}
		data = append(data, cells)
	}
	table := newTable(cmd.OutOrStdout(), nil)
	table.AppendBulk(data)
	table.Render()

	return nil
}

func splitRows(data []float64, cols int) [][]float64 {
	var rows [][]float64
	for i := 0; i+cols <= len(data); i += cols {
		rows = append(rows, data[i:i+cols])
	}

	return rows
}

// DPLRHandler prints Λ and the reconstruction error of DPLR(n).
func DPLRHandler(cmd *cobra.Command, args []string) error {
	n, err := cmd.Flags().GetInt("n")
	if err != nil {
		return err
	}
	d, err := hippo.DPLR(n)
	if err != nil {
		return err
	}
	a, err := hippo.HiPPO(n)
	if err != nil {
		return err
	}
	rec, err := d.Reconstruct()
	if err != nil {
		return err
	}
	diff, err := matrix.MaxAbsDiff(rec, a)
	if err != nil {
		return err
	}

	data := make([][]string, 0, n)
	for i, l := range d.Lambda {
		data = append(data, []string{
			strconv.Itoa(i), fmtFloat(real(l)), fmtFloat(imag(l)), fmtFloat(cmplx.Abs(d.B[i])),
		})
	}
	table := newTable(cmd.OutOrStdout(), []string{"I", "RE LAMBDA", "IM LAMBDA", "|B|"})
	table.AppendBulk(data)
	table.Render()
	fmt.Fprintf(cmd.OutOrStdout(), "reconstruction error: %.3g\n", diff)
	fmt.Fprintf(cmd.OutOrStdout(), "V unitary: %t\n", matrix.IsUnitary(d.V, 1e-8))

	return nil
}

// KernelHandler prints K̄ of a seeded layer with a fixed step.
func KernelHandler(cmd *cobra.Command, logger *slog.Logger) error {
	flags := cmd.Flags()
	n, err := flags.GetInt("n")
	if err != nil {
		return err
	}
	L, err := flags.GetInt("l")
	if err != nil {
		return err
	}
	step, err := flags.GetFloat64("step")
	if err != nil {
		return err
	}
	seed, err := flags.GetUint64("seed")
	if err != nil {
		return err
	}
	name, err := flags.GetString("method")
	if err != nil {
		return err
	}
	method, ok := kernel.ParseMethod(name)
	if !ok {
		return fmt.Errorf("unknown kernel method %q", name)
	}
	if !(step > 0) {
		return fmt.Errorf("step must be positive, got %g", step)
	}

	layer, err := s4.New(n, L, false, s4.WithSeed(seed), s4.WithLogger(logger), s4.WithKernelMethod(method))
	if err != nil {
		return err
	}
	if err := layer.SetLogStep(math.Log(step)); err != nil {
		return err
	}
	k, err := layer.Kernel()
	if err != nil {
		return err
	}

	data := make([][]string, len(k))
	for i, v := range k {
		data[i] = []string{strconv.Itoa(i), fmtFloat(v)}
	}
	table := newTable(cmd.OutOrStdout(), []string{"L", "K"})
	table.AppendBulk(data)
	table.Render()

	return nil
}

// BilinearHandler discretizes HiPPO(n) with input B_i = sqrt(2i+1) and readout
// of ones, and prints the first l samples of its impulse response.
func BilinearHandler(cmd *cobra.Command, logger *slog.Logger) error {
	flags := cmd.Flags()
	n, err := flags.GetInt("n")
	if err != nil {
		return err
	}
	L, err := flags.GetInt("l")
	if err != nil {
		return err
	}
	step, err := flags.GetFloat64("step")
	if err != nil {
		return err
	}
	if L < 1 {
		return fmt.Errorf("length must be >= 1, got %d", L)
	}

	a, err := hippo.HiPPOReal(n)
	if err != nil {
		return err
	}
	nplr, err := hippo.NPLR(n)
	if err != nil {
		return err
	}
	b := mat.NewDense(n, 1, nplr.B)
	ones := make([]float64, n)
	for i := range ones {
		ones[i] = 1
	}
	c := mat.NewDense(1, n, ones)

	disc, err := discretize.Bilinear(a, b, c, step)
	if err != nil {
		return err
	}
	if disc.Cond > discretize.CondWarn {
		logger.Warn("bilinear denominator is ill-conditioned", "cond", disc.Cond, "n", n, "step", step)
	}

	u := make([]float64, L)
	u[0] = 1
	y, _, err := scan.RunReal(disc.A, disc.B, disc.C, u, make([]float64, n))
	if err != nil {
		return err
	}
	data := make([][]string, len(y))
	for i, v := range y {
		data[i] = []string{strconv.Itoa(i), fmtFloat(v)}
	}
	table := newTable(cmd.OutOrStdout(), []string{"T", "Y"})
	table.AppendBulk(data)
	table.Render()

	return nil
}

// ForwardHandler runs one Forward over the positional samples.
func ForwardHandler(cmd *cobra.Command, args []string, logger *slog.Logger) error {
	flags := cmd.Flags()
	n, err := flags.GetInt("n")
	if err != nil {
		return err
	}
	name, err := flags.GetString("mode")
	if err != nil {
		return err
	}
	mode, ok := s4.ParseMode(name)
	if !ok {
		return fmt.Errorf("unknown mode %q", name)
	}
	seed, err := flags.GetUint64("seed")
	if err != nil {
		return err
	}
	d, err := flags.GetFloat64("d")
	if err != nil {
		return err
	}

	u := make([]float64, len(args))
	for i, s := range args {
		if u[i], err = strconv.ParseFloat(s, 64); err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
	}

	layer, err := s4.New(n, len(u), mode == s4.Decode, s4.WithSeed(seed), s4.WithD(d), s4.WithLogger(logger))
	if err != nil {
		return err
	}
	y, err := layer.Forward(u)
	if err != nil {
		return err
	}
	logger.Debug("forward done", "mode", layer.Mode(), "state", layer.State(), "step", layer.StepSize())

	data := make([][]string, len(y))
	for i := range y {
		data[i] = []string{strconv.Itoa(i), fmtFloat(u[i]), fmtFloat(y[i])}
	}
	table := newTable(cmd.OutOrStdout(), []string{"T", "U", "Y"})
	table.AppendBulk(data)
	table.Render()

	return nil
}
