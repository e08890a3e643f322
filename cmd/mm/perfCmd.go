package mm

import (
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/zMap/cmd/util"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for zMap against a Redis server",
		Long:    "",
		RunE:    run,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix    = "__test"
	perfNumThreads   = 10
	perfKeySpread    = 100
	perfValuesPerKey = 10
	perfSkip         = make([]string, 0)
)

func init() {
	// add flags
	key := "skip"
	MultiMapCommands.PersistentFlags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. add,get)"))
	key = "threads"
	MultiMapCommands.PersistentFlags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "keys"
	MultiMapCommands.PersistentFlags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "values"
	MultiMapCommands.PersistentFlags().Int(key, 10, util.WrapString("How many values the add-many test inserts per key"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfKeySpread = viper.GetInt("keys")
	perfValuesPerKey = viper.GetInt("values")
	perfNumThreads = viper.GetInt("threads")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

// perfResult bundles a benchmark result with its latency distribution
type perfResult struct {
	bench testing.BenchmarkResult
	timer gometrics.Timer
}

func run(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for zMap")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	conf := util.GetStoreConfig()
	fmt.Println(conf.String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Printf("Keys: %d\n", perfKeySpread)
	fmt.Println()

	fmt.Println("starting tests...")

	// Create results map
	results := make(map[string]perfResult)

	addResult := benchmark("add", func(getKey func(int) string, timer gometrics.Timer) func(counter int) {
		return func(counter int) {
			timer.Time(func() {
				if err := mmap.Add(getKey(counter), fmt.Sprintf("value-%d", counter)); err != nil {
					log.Printf("(add) - error adding value: %v\n", err)
				}
			})
		}
	})
	results["add"] = addResult
	printResult("add", addResult)

	addManyResult := benchmark("add-many", func(getKey func(int) string, timer gometrics.Timer) func(counter int) {
		// one bulk insert of several values per op
		values := make([]string, perfValuesPerKey)
		for i := range values {
			values[i] = fmt.Sprintf("value-%d", i)
		}
		return func(counter int) {
			timer.Time(func() {
				if err := mmap.Add(getKey(counter), values...); err != nil {
					log.Printf("(add-many) - error adding values: %v\n", err)
				}
			})
		}
	})
	results["add-many"] = addManyResult
	printResult("add-many", addManyResult)

	getResult := benchmarkWithSeed("get", func(getKey func(int) string, timer gometrics.Timer) func(counter int) {
		return func(counter int) {
			timer.Time(func() {
				if _, err := mmap.Get(getKey(counter)); err != nil {
					log.Printf("(get) - error getting key: %v\n", err)
				}
			})
		}
	})
	results["get"] = getResult
	printResult("get", getResult)

	getMissingResult := benchmark("get-missing", func(getKey func(int) string, timer gometrics.Timer) func(counter int) {
		return func(counter int) {
			timer.Time(func() {
				key := fmt.Sprintf("%s/missing-%d", perfKeyPrefix, counter%perfKeySpread)
				if _, err := mmap.Get(key); err != nil {
					log.Printf("(get-missing) - error getting key: %v\n", err)
				}
			})
		}
	})
	results["get-missing"] = getMissingResult
	printResult("get-missing", getMissingResult)

	deleteResult := benchmarkWithSeed("delete", func(getKey func(int) string, timer gometrics.Timer) func(counter int) {
		return func(counter int) {
			timer.Time(func() {
				if err := mmap.Delete(getKey(counter)); err != nil {
					log.Printf("(delete) - error deleting key: %v\n", err)
				}
			})
		}
	})
	results["delete"] = deleteResult
	printResult("delete", deleteResult)

	mixedResult := benchmarkWithSeed("mixed", func(getKey func(int) string, timer gometrics.Timer) func(counter int) {
		return func(counter int) {
			timer.Time(func() {
				key := getKey(counter)
				var err error
				switch counter % 3 {
				case 0: // add
					err = mmap.Add(key, fmt.Sprintf("value-%d", counter))
				case 1: // get
					_, err = mmap.Get(key)
				case 2: // delete
					err = mmap.Delete(key)
				}
				if err != nil {
					log.Printf("(mixed) - error performing operation (%d): %v\n", counter%3, err)
				}
			})
		}
	})
	results["mixed"] = mixedResult
	printResult("mixed", mixedResult)

	// Write results to csv if specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// creates an array of test keys and functions to work with them
func getKeys(prefix string) (func(int) string, func(func(string))) {
	keys := make([]string, perfKeySpread)
	for i := 0; i < perfKeySpread; i++ {
		keys[i] = fmt.Sprintf("%s-%s-%d", perfKeyPrefix, prefix, i)
	}

	// Function to get a key by index (with wraparound)
	getKey := func(i int) string {
		return keys[i%perfKeySpread]
	}

	// Function to iterate over all keys and apply a function to each
	iterateKeys := func(fn func(string)) {
		for _, key := range keys {
			fn(key)
		}
	}

	return getKey, iterateKeys
}

// benchmark runs one named parallel benchmark over the shared key spread
func benchmark(name string, setup func(getKey func(int) string, timer gometrics.Timer) func(counter int)) perfResult {
	return benchmarkInner(name, false, setup)
}

// benchmarkWithSeed pre-populates the key spread before measuring
func benchmarkWithSeed(name string, setup func(getKey func(int) string, timer gometrics.Timer) func(counter int)) perfResult {
	return benchmarkInner(name, true, setup)
}

func benchmarkInner(name string, seed bool, setup func(getKey func(int) string, timer gometrics.Timer) func(counter int)) perfResult {
	timer := gometrics.NewTimer()

	bench := testing.Benchmark(func(b *testing.B) {
		if shouldSkip(name) {
			return
		}

		// prepare keys
		getKey, iter := getKeys(name)

		if seed {
			iter(func(k string) {
				if err := mmap.Add(k, "seed"); err != nil {
					log.Printf("(%s) - error seeding key: %v\n", name, err)
				}
			})
		}

		// cleanup
		b.Cleanup(func() {
			iter(func(k string) {
				if err := mmap.Delete(k); err != nil {
					log.Printf("(%s) - error deleting key: %v\n", name, err)
				}
			})
		})

		op := setup(getKey, timer)

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				op(counter)
				counter++
			}
		})
	})

	return perfResult{bench: bench, timer: timer}
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result perfResult) {
	if result.bench.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.bench.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	snapshot := result.timer.Snapshot()
	p50 := time.Duration(int64(snapshot.Percentile(0.5)))
	p95 := time.Duration(int64(snapshot.Percentile(0.95)))
	p99 := time.Duration(int64(snapshot.Percentile(0.99)))

	// Print the formatted result
	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\tp50=%s p95=%s p99=%s\n",
		test, nsPerOp, time.Duration(int64(nsPerOp)), opsPerSec, p50, p95, p99)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]perfResult) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	conf := util.GetStoreConfig()

	// Write header
	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "P50", "P95", "P99", "Skipped",
		"RedisAddr", "RedisDB", "Prefix", "TTL",
		"Threads", "Keys Count", "Values Per Key",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for test, result := range results {
		var nsPerOp float64
		var opsPerSec float64
		var skipped string

		if result.bench.NsPerOp() == 0 {
			skipped = "true"
			nsPerOp = 0
			opsPerSec = 0
		} else {
			skipped = "false"
			nsPerOp = math.Max(float64(result.bench.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		snapshot := result.timer.Snapshot()

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(int64(nsPerOp)).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			time.Duration(int64(snapshot.Percentile(0.5))).String(),
			time.Duration(int64(snapshot.Percentile(0.95))).String(),
			time.Duration(int64(snapshot.Percentile(0.99))).String(),
			skipped,
			conf.Addr,
			strconv.Itoa(conf.DB),
			util.GetKeyPrefix(),
			strconv.FormatInt(util.GetEngineOptions().TTL, 10),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfKeySpread),
			strconv.Itoa(perfValuesPerKey),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
