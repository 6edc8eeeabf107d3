package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/inference-sim/portsim/sim/terminal"
)

var (
	// CLI flags for the run
	configPath string // YAML scenario file
	logLevel   string // Log verbosity level
	reportJSON string // Optional path for the JSON report

	// CLI flags overriding the scenario file
	seed                int64   // Seed for vessel arrivals
	horizon             float64 // Simulation horizon (minutes)
	berths              int     // Number of berths, one crane each
	trucks              int     // Number of yard trucks
	craneMoveTime       float64 // Minutes per crane move
	truckReturnTime     float64 // Minutes per truck round trip
	containersPerVessel int     // Containers carried by each vessel
	arrivalMean         float64 // Mean minutes between vessel arrivals
	arrivalProcess      string  // Inter-arrival distribution
	arrivalCV           float64 // Coefficient of variation for gamma/weibull
	dedicatedTrucks     bool    // Home each truck at one berth

	// CLI flags for resumption tracing
	traceSink  string // none, csv or sqlite
	tracePath  string // Output file for the trace sink
	traceLevel string // In-memory trace level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "portsim",
	Short: "Discrete-event simulator for container terminal operations",
}

// runCmd executes the terminal scenario using the scenario file and CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the container terminal simulation",
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q", logLevel)
		}
		logrus.SetLevel(level)

		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		term, err := terminal.New(cfg, nil)
		if err != nil {
			return err
		}
		defer term.Close()

		runID := xid.New().String()
		st, err := newTrace(runID)
		if err != nil {
			return err
		}
		term.Sim.Trace = st

		logrus.Infof("Starting run %s: %d berths, %d trucks, %d containers/vessel, arrival mean %.1f min (%s), horizon %.1f min, seed %d",
			runID, cfg.Berths, cfg.Trucks, cfg.ContainersPerVessel, cfg.ArrivalMean, cfg.Arrival.Process, cfg.Horizon, cfg.Seed)
		startTime := time.Now()

		rep, runErr := term.Run()
		rep.RunID = runID
		rep.Print(cmd.OutOrStdout())

		if reportJSON != "" {
			if err := writeReportJSON(reportJSON, rep); err != nil {
				logrus.Errorf("writing report: %v", err)
			}
		}
		if err := st.Close(); err != nil {
			logrus.Errorf("closing trace: %v", err)
		}
		if runErr != nil {
			return fmt.Errorf("simulation stopped at %.3f: %w", rep.Time, runErr)
		}
		logrus.Infof("Simulation complete in %v.", time.Since(startTime))
		return nil
	},
}

// configCmd prints the effective scenario as YAML
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective scenario configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		return writeConfig(cmd.OutOrStdout(), cfg)
	},
}

func writeReportJSON(path string, rep *terminal.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := rep.WriteJSON(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Execute runs the CLI root command and flushes registered exit handlers.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

// registerScenarioFlags binds the scenario override flags to c.
func registerScenarioFlags(c *cobra.Command) {
	d := terminal.DefaultConfig()
	c.Flags().StringVar(&configPath, "config", "", "Path to a YAML scenario file")
	c.Flags().Int64Var(&seed, "seed", d.Seed, "Seed for vessel arrivals")
	c.Flags().Float64Var(&horizon, "horizon", d.Horizon, "Simulation horizon (minutes)")
	c.Flags().IntVar(&berths, "berths", d.Berths, "Number of berths, each with one crane")
	c.Flags().IntVar(&trucks, "trucks", d.Trucks, "Number of yard trucks")
	c.Flags().Float64Var(&craneMoveTime, "crane-move-time", d.CraneMoveTime, "Minutes for a crane to move one container onto a truck")
	c.Flags().Float64Var(&truckReturnTime, "truck-return-time", d.TruckReturnTime, "Minutes for a truck round trip to the yard")
	c.Flags().IntVar(&containersPerVessel, "containers", d.ContainersPerVessel, "Containers carried by each vessel")
	c.Flags().Float64Var(&arrivalMean, "arrival-mean", d.ArrivalMean, "Mean minutes between vessel arrivals")
	c.Flags().StringVar(&arrivalProcess, "arrival-process", d.Arrival.Process, "Inter-arrival distribution (poisson, gamma, weibull, constant)")
	c.Flags().Float64Var(&arrivalCV, "arrival-cv", 1.0, "Coefficient of variation for gamma and weibull arrivals")
	c.Flags().BoolVar(&dedicatedTrucks, "dedicated-trucks", d.DedicatedTrucks, "Home truck i at berth i mod berths")
}

// init sets up CLI flags and subcommands
func init() {
	registerScenarioFlags(runCmd)
	runCmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&reportJSON, "report-json", "", "Also write the report as JSON to this path")
	runCmd.Flags().StringVar(&traceSink, "trace", "none", "Resumption trace sink (none, csv, sqlite)")
	runCmd.Flags().StringVar(&tracePath, "trace-path", "", "Trace output file (default: generated name in the working directory)")
	runCmd.Flags().StringVar(&traceLevel, "trace-level", "none", "In-memory trace level (none, resumptions)")

	registerScenarioFlags(configCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(configCmd)
}
