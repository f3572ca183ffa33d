// internal/cli/inventory.go
package cli

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"safari-connect/internal/database"
	"safari-connect/internal/inventory"
	"safari-connect/internal/repository"
)

type InventoryOptions struct {
	*RootOptions
	At     string
	Memory bool
	Days   bool
}

// StoredDay is one persisted daily count.
type StoredDay struct {
	Date  inventory.DayKey `json:"date"`
	Count int              `json:"count"`
}

var inventoryTimeFormats = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"}

func NewInventoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InventoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Print today's and tomorrow's device counts",
		Long: `Compute the inventory snapshot the site would show at a given time.

By default the counts are read from and recorded in the configured database,
so repeated calls on the same day agree with the running server. With
--memory nothing is persisted. --days lists every day stored in the
database instead of computing a snapshot.

Example:
  safari-connect inventory
  safari-connect inventory --memory --at "2026-10-24 19:30"
  safari-connect inventory --days --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInventory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.At, "at", "", "time to compute the snapshot for (RFC3339, \"YYYY-MM-DD HH:MM\" or a date)")
	cmd.Flags().BoolVar(&opts.Memory, "memory", false, "use a throwaway in-memory store instead of the database")
	cmd.Flags().BoolVar(&opts.Days, "days", false, "list the daily counts stored in the database")
	cmd.MarkFlagsMutuallyExclusive("days", "memory")
	cmd.MarkFlagsMutuallyExclusive("days", "at")

	return cmd
}

func runInventory(opts *InventoryOptions, cmd *cobra.Command) error {
	sim, err := buildSimulator(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to set up inventory", err)
	}

	at := time.Now()
	if opts.At != "" {
		at, err = parseInventoryTime(opts.At, sim.Location())
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --at", err)
		}
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	var store inventory.KeyValueStore
	if opts.Memory {
		store = inventory.NewMemoryStore()
	} else {
		db, err := database.New(opts.Config.Database.Path)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()
		kv := repository.NewKVRepository(db)
		if opts.Days {
			return printStoredDays(kv, formatter)
		}
		store = kv
	}

	snap := inventory.NewService(sim, store, opts.Config.Inventory.ViewWindow).Snapshot(at)
	return formatter.Print(snap, fmt.Sprintf("%s  today: %d  tomorrow: %d", snap.Date, snap.Today, snap.Tomorrow))
}

func printStoredDays(kv *repository.KVRepository, formatter *OutputFormatter) error {
	keys, err := kv.Keys(inventory.DayKeyPrefix)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to list stored days", err)
	}

	days := make([]StoredDay, 0, len(keys))
	var text strings.Builder
	for _, key := range keys {
		date := inventory.DayKey(strings.TrimPrefix(key, inventory.DayKeyPrefix))
		raw, ok := kv.Get(key)
		if !ok || !date.Valid() {
			continue
		}
		count, err := strconv.Atoi(raw)
		if err != nil {
			slog.Warn("skipping unreadable stored count", "key", key, "value", raw)
			continue
		}
		days = append(days, StoredDay{Date: date, Count: count})
		fmt.Fprintf(&text, "%s  %d\n", date, count)
	}
	if len(days) == 0 {
		text.WriteString("no stored days\n")
	}

	return formatter.Print(days, strings.TrimSuffix(text.String(), "\n"))
}

func parseInventoryTime(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range inventoryTimeFormats {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time %q", s)
}
