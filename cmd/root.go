package cmd

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Sang-it/server-load-simulation/config"
	"github.com/Sang-it/server-load-simulation/live"
	"github.com/Sang-it/server-load-simulation/report"
	"github.com/Sang-it/server-load-simulation/sim"
)

var (
	// Global flags
	logLevel string

	// Scenario source: either a YAML file or the flag-built scenario below
	configPath string

	// Flag-built scenario
	scenarioName     string
	duration         float64 // seconds
	numServers       int
	workersPerServer int
	hardwareName     string
	languageName     string

	requestRate    float64
	trafficPattern string
	strategy       string
	weights        []int

	processingTime   float64 // ms
	requestTimeout   float64 // ms, 0 disables
	processingStdDev float64 // ms
	distribution     string
	networkMean      float64 // ms
	networkStdDev    float64 // ms

	cpuDegradation   bool
	seed             int64
	progressEverySec float64

	// Output and presentation
	outputPath string
	liveAddr   string
	timeScale  float64 // progress pacing: simulated seconds per wall second, 0 = no pacing
	quiet      bool
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "loadsim",
	Short: "Discrete-event simulator for request-processing server pools",
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// loadScenarios returns the scenarios to run: all scenarios from the config
// file when one is given, otherwise the single scenario built from flags.
func loadScenarios() []sim.Scenario {
	if configPath != "" {
		scenarios, err := config.Load(configPath)
		if err != nil {
			logrus.Fatalf("Loading scenarios: %v", err)
		}
		return scenarios
	}

	hw, err := sim.HardwareByName(hardwareName)
	if err != nil {
		logrus.Fatalf("%v (choose from %v)", err, sim.HardwareProfileNames())
	}
	lang, err := sim.LanguageByName(languageName)
	if err != nil {
		logrus.Fatalf("%v (choose from %v)", err, sim.LanguageProfileNames())
	}

	sc := sim.Scenario{
		Name:                       scenarioName,
		Duration:                   duration,
		NumServers:                 numServers,
		WorkersPerServer:           workersPerServer,
		Hardware:                   hw,
		Language:                   lang,
		BaseRequestRate:            requestRate,
		TrafficPattern:             trafficPattern,
		BalancingStrategy:          strategy,
		Weights:                    weights,
		RequestProcessingTime:      processingTime,
		RequestTimeout:             requestTimeout,
		ProcessingTimeStdDev:       processingStdDev,
		ProcessingTimeDistribution: distribution,
		NetworkLatencyMean:         networkMean,
		NetworkLatencyStdDev:       networkStdDev,
		CPUDegradationEnabled:      cpuDegradation,
		Seed:                       seed,
		ProgressInterval:           progressEverySec,
	}
	sc.Normalize()
	if err := sc.Validate(); err != nil {
		logrus.Fatalf("Invalid scenario: %v", err)
	}
	return []sim.Scenario{sc}
}

// runScenario executes one scenario with progress reporting and optional
// live streaming.
func runScenario(sc sim.Scenario, broadcaster *live.Broadcaster) *sim.Snapshot {
	simulator, err := sim.NewSimulator(sc)
	if err != nil {
		logrus.Fatalf("Building simulator: %v", err)
	}

	var publish sim.ProgressFunc
	if broadcaster != nil {
		publish = broadcaster.Progress()
	}
	simulator.SetProgress(func(simTime, total float64, snap *sim.Snapshot) {
		if !quiet {
			logrus.Infof("[%s] %6.1fs / %.1fs  completed=%d  success=%.1f%%",
				sc.Name, simTime, total, snap.TotalRequests, snap.SuccessRate*100)
		}
		if publish != nil {
			publish(simTime, total, snap)
		}
		if timeScale > 0 {
			time.Sleep(time.Duration(sc.ProgressInterval / timeScale * float64(time.Second)))
		}
	})

	start := time.Now()
	snap, err := simulator.Execute()
	if err != nil {
		logrus.Fatalf("Simulation failed: %v", err)
	}
	logrus.Infof("Scenario %q: %.1f simulated seconds in %s", sc.Name, sc.Duration, time.Since(start).Round(time.Millisecond))
	return snap
}

// runCmd executes scenarios and prints/saves their results
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one or more load simulation scenarios",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		scenarios := loadScenarios()

		var broadcaster *live.Broadcaster
		if liveAddr != "" {
			broadcaster = live.NewBroadcaster()
			go func() {
				if err := live.Serve(liveAddr, broadcaster); err != nil {
					logrus.Fatalf("Live endpoint: %v", err)
				}
			}()
		}

		snapshots := make([]*sim.Snapshot, 0, len(scenarios))
		for _, sc := range scenarios {
			snapshots = append(snapshots, runScenario(sc, broadcaster))
		}
		if broadcaster != nil {
			broadcaster.Finish(snapshots[len(snapshots)-1])
		}

		for _, snap := range snapshots {
			report.WriteSummary(os.Stdout, snap)
		}
		if outputPath != "" {
			if err := report.Save(outputPath, snapshots); err != nil {
				logrus.Fatalf("Saving report: %v", err)
			}
			logrus.Infof("Report written to %s", outputPath)
		}
	},
}

// compareCmd runs every scenario in a config file and ranks the results
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run all scenarios from a config file and rank them",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		if configPath == "" {
			logrus.Fatal("compare requires --config with at least two scenarios")
		}
		scenarios := loadScenarios()
		if len(scenarios) < 2 {
			logrus.Fatal("compare requires at least two scenarios")
		}

		snapshots := make([]*sim.Snapshot, 0, len(scenarios))
		for _, sc := range scenarios {
			snapshots = append(snapshots, runScenario(sc, nil))
		}

		report.Compare(snapshots).WriteText(os.Stdout)
		if outputPath != "" {
			if err := report.Save(outputPath, snapshots); err != nil {
				logrus.Fatalf("Saving report: %v", err)
			}
			logrus.Infof("Report written to %s", outputPath)
		}
	},
}

// profilesCmd lists the built-in hardware and language profiles
var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List built-in hardware and language profiles",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("hardware profiles:")
		for _, name := range sim.HardwareProfileNames() {
			hw, _ := sim.HardwareByName(name)
			cmd.Printf("  %-18s %d cores, %.1fx processing power, %.1fms IO latency\n",
				name, hw.NumCores, hw.ProcessingPower, hw.IOLatency)
		}
		cmd.Println("language profiles:")
		for _, name := range sim.LanguageProfileNames() {
			lang, _ := sim.LanguageByName(name)
			cmd.Printf("  %-18s %.1fx efficiency\n", name, lang.EfficiencyFactor)
		}
		cmd.Println("traffic patterns:   ", sim.TrafficPatternNames())
		cmd.Println("balancing strategies:", sim.StrategyNames())
	},
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")

	for _, c := range []*cobra.Command{runCmd, compareCmd} {
		c.Flags().StringVarP(&configPath, "config", "c", "", "YAML scenario file (overrides scenario flags)")
		c.Flags().StringVarP(&outputPath, "output", "o", "", "Write results to a .json or .csv file")
		c.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress per-interval progress lines")
		c.Flags().Float64Var(&timeScale, "time-scale", 0, "Pace progress output at N simulated seconds per wall second (0 = full speed)")
	}

	runCmd.Flags().StringVar(&scenarioName, "name", "adhoc", "Scenario name")
	runCmd.Flags().Float64Var(&duration, "duration", 60, "Simulated duration in seconds")
	runCmd.Flags().IntVar(&numServers, "servers", 3, "Number of servers in the pool")
	runCmd.Flags().IntVar(&workersPerServer, "workers", 0, "Worker slots per server (0 = hardware core count)")
	runCmd.Flags().StringVar(&hardwareName, "hardware", "standard", "Hardware profile")
	runCmd.Flags().StringVar(&languageName, "language", "python", "Language profile")
	runCmd.Flags().Float64Var(&requestRate, "rate", 10, "Base request rate (req/s)")
	runCmd.Flags().StringVar(&trafficPattern, "pattern", "poisson", "Traffic pattern")
	runCmd.Flags().StringVar(&strategy, "strategy", "round_robin", "Load balancing strategy")
	runCmd.Flags().IntSliceVar(&weights, "weights", nil, "Per-server weights for weighted_round_robin")
	runCmd.Flags().Float64Var(&processingTime, "processing-time", 100, "Base request processing time (ms)")
	runCmd.Flags().Float64Var(&requestTimeout, "timeout", 0, "Request timeout (ms, 0 disables)")
	runCmd.Flags().Float64Var(&processingStdDev, "processing-stddev", 0, "Processing time standard deviation (ms)")
	runCmd.Flags().StringVar(&distribution, "distribution", "normal", "Processing time distribution (normal, lognormal)")
	runCmd.Flags().Float64Var(&networkMean, "network-latency", 0, "Mean network latency (ms)")
	runCmd.Flags().Float64Var(&networkStdDev, "network-latency-stddev", 0, "Network latency standard deviation (ms)")
	runCmd.Flags().BoolVar(&cpuDegradation, "degradation", false, "Enable utilization-based CPU degradation")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Master seed for all random streams")
	runCmd.Flags().Float64Var(&progressEverySec, "progress-interval", 1, "Progress sampling interval (simulated seconds)")
	runCmd.Flags().StringVar(&liveAddr, "live", "", "Serve live metrics over WebSocket at this address (e.g. :8080)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(profilesCmd)
}
