package mm

import (
	"github.com/ValentinKolb/zMap/cmd/util"
	"github.com/ValentinKolb/zMap/lib/multimap"
	"github.com/ValentinKolb/zMap/lib/multimap/cast"
	"github.com/ValentinKolb/zMap/lib/zset"
	"github.com/ValentinKolb/zMap/lib/zset/rstore"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	store zset.IZSetStore
	mmap  multimap.IMultiMap[string]

	// MultiMapCommands represents the multimap command group
	MultiMapCommands = &cobra.Command{
		Use:               "mm",
		Short:             "Perform multimap operations against a Redis server",
		PersistentPreRunE: setupClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common store and engine flags to the mm command
	util.SetupStoreFlags(MultiMapCommands)

	// Add subcommands
	MultiMapCommands.AddCommand(addCmd)
	MultiMapCommands.AddCommand(addAtCmd)
	MultiMapCommands.AddCommand(getCmd)
	MultiMapCommands.AddCommand(delCmd)
	MultiMapCommands.AddCommand(perfTestCmd)
}

// setupClient connects to Redis and builds the multimap engine on top
func setupClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// Install the custom log format before anything logs
	util.InitLoggers(viper.GetString("log-level"))

	// Connect to the configured Redis server
	s, err := rstore.NewRedisStore(util.GetStoreConfig())
	if err != nil {
		return err
	}
	store = s

	// Values entered on the command line are plain strings
	mmap = multimap.New[string](store, util.GetKeyPrefix(), cast.NewStringCaster(), util.GetEngineOptions())
	return nil
}
