package mm

import (
	"fmt"
	"strconv"

	"github.com/ValentinKolb/zMap/lib/multimap"
	"github.com/spf13/cobra"
)

var (
	addCmd = &cobra.Command{
		Use:   "add [key] [value...]",
		Short: "Adds values to a key",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			values := args[1:]
			if err := mmap.Add(key, values...); err != nil {
				return err
			}
			fmt.Printf("added %d value(s) to %s\n", len(values), key)
			return nil
		},
	}
	addAtCmd = &cobra.Command{
		Use:   "addat [key] [value] [expireAt]",
		Short: "Adds a value with an explicit unix expiry timestamp",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]
			expireAt, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("expireAt must be a unix timestamp: %w", err)
			}
			err = mmap.AddManyWithScores([]multimap.KeyScoredValues[string]{
				{Name: key, Values: []multimap.ScoredValue[string]{
					{Value: value, ExpireAt: expireAt},
				}},
			})
			if err != nil {
				return err
			}
			fmt.Println("added successfully")
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key...]",
		Short: "Reads the live values of one or more keys",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := mmap.GetMany(args...)
			if err != nil {
				return err
			}
			for i, result := range results {
				values, err := result.Collect()
				if err != nil {
					return err
				}
				fmt.Printf("key=%s, count=%d, values=%v\n", args[i], len(values), values)
			}
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key...]",
		Short: "Deletes one or more keys with all their values",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := mmap.Delete(args...); err != nil {
				return err
			}
			fmt.Println("delete successfully")
			return nil
		},
	}
)
