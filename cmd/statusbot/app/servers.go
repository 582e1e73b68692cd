package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/mcstatusbot/statusbot/internal/config"
	"github.com/mcstatusbot/statusbot/internal/models"
	"github.com/mcstatusbot/statusbot/internal/store"
)

func newServersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "servers",
		Short: "Manage the servers each guild monitors",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Usage()
		},
	}
	cmd.PersistentFlags().String("guild", "", "Guild ID")

	cmd.AddCommand(newServersListCmd())
	cmd.AddCommand(newServersAddCmd())
	cmd.AddCommand(newServersRemoveCmd())
	cmd.AddCommand(newServersSetDefaultCmd())
	cmd.AddCommand(newServersIndicatorsCmd())
	return cmd
}

// openStore opens the configured record store. The returned function releases it.
func openStore(cmd *cobra.Command) (store.Store, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	if cfg.GetStorageType() != config.StorageTypeDatabase {
		st, err := store.New(cfg, nil)
		return st, func() {}, err
	}

	pool, err := store.NewPool(cmd.Context(), cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	st, err := store.New(cfg, pool)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return st, pool.Close, nil
}

// requireGuild returns the --guild flag or an error when it is missing
func requireGuild(cmd *cobra.Command) (string, error) {
	guildID, _ := cmd.Flags().GetString("guild")
	if guildID == "" {
		return "", errors.New("--guild is required")
	}
	return guildID, nil
}

func newServersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List monitored servers, for one guild with --guild or for all guilds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, release, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer release()

			guildIDs, err := listedGuilds(cmd)
			if err != nil {
				return err
			}
			if guildIDs == nil {
				if guildIDs, err = st.GuildIDs(cmd.Context()); err != nil {
					return err
				}
			}
			return writeServers(cmd.Context(), cmd.OutOrStdout(), st, guildIDs)
		},
	}
}

func listedGuilds(cmd *cobra.Command) ([]string, error) {
	guildID, err := cmd.Flags().GetString("guild")
	if err != nil || guildID == "" {
		return nil, err
	}
	return []string{guildID}, nil
}

func writeServers(ctx context.Context, w io.Writer, st store.Store, guildIDs []string) error {
	table := tablewriter.NewWriter(w)
	table.Header("Guild", "Address", "Nickname", "Platform", "Default", "Status Channel", "Players Channel")

	for _, guildID := range guildIDs {
		servers, err := st.GetServers(ctx, guildID)
		if err != nil {
			return fmt.Errorf("failed to read guild %s: %w", guildID, err)
		}
		for _, s := range servers {
			if err := table.Append([]string{
				guildID,
				s.Address,
				s.Nickname,
				string(s.GetPlatform()),
				strconv.FormatBool(s.Default),
				s.StatusChannelID,
				s.PlayersChannelID,
			}); err != nil {
				return err
			}
		}
	}
	return table.Render()
}

func newServersAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <address>",
		Short: "Monitor a server in a guild",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			guildID, err := requireGuild(cmd)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			platformName, _ := flags.GetString("platform")
			platform, err := models.ParsePlatform(platformName)
			if err != nil {
				return err
			}

			server := models.MonitoredServer{Address: args[0], Platform: platform}
			server.Nickname, _ = flags.GetString("nickname")
			server.Default, _ = flags.GetBool("default")
			server.StatusChannelID, _ = flags.GetString("status-channel")
			server.PlayersChannelID, _ = flags.GetString("players-channel")
			server.CategoryID, _ = flags.GetString("category")
			if server.StatusChannelID == "" || server.PlayersChannelID == "" {
				return errors.New("--status-channel and --players-channel are required")
			}

			st, release, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer release()

			if err := st.AddServer(cmd.Context(), guildID, server); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Added %s to guild %s\n", server.Address, guildID)
			return err
		},
	}
	cmd.Flags().String("nickname", "", "Nickname used to refer to the server")
	cmd.Flags().String("platform", string(models.PlatformJava), "Server platform (java or bedrock)")
	cmd.Flags().Bool("default", false, "Make this the guild's default server")
	cmd.Flags().String("status-channel", "", "ID of the channel showing the status")
	cmd.Flags().String("players-channel", "", "ID of the channel showing the player count")
	cmd.Flags().String("category", "", "ID of the category holding both channels")
	return cmd
}

func newServersRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove [server]",
		Short: "Stop monitoring a server, or every server of the guild with --all",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			guildID, err := requireGuild(cmd)
			if err != nil {
				return err
			}
			all, _ := cmd.Flags().GetBool("all")
			if all == (len(args) == 1) {
				return errors.New("specify either a server or --all")
			}

			st, release, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer release()

			if all {
				if err := st.DeleteGuild(cmd.Context(), guildID); err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Removed every server of guild %s\n", guildID)
				return err
			}

			removed, err := st.RemoveServer(cmd.Context(), guildID, args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from guild %s\n", removed.DisplayName(), guildID)
			return err
		},
	}
	cmd.Flags().Bool("all", false, "Remove every server of the guild")
	return cmd
}

func newServersSetDefaultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-default <server>",
		Short: "Make a server the guild's default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			guildID, err := requireGuild(cmd)
			if err != nil {
				return err
			}

			st, release, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer release()

			if err := st.SetDefault(cmd.Context(), guildID, args[0]); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s is now the default server of guild %s\n", args[0], guildID)
			return err
		},
	}
}

func newServersIndicatorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "indicators <server>",
		Short: "Set the words shown for online and offline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			guildID, err := requireGuild(cmd)
			if err != nil {
				return err
			}

			online, _ := cmd.Flags().GetString("online")
			offline, _ := cmd.Flags().GetString("offline")
			indicators := models.Indicators{Online: online, Offline: offline}.WithDefaults()

			st, release, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer release()

			if err := st.SetIndicators(cmd.Context(), guildID, args[0], indicators); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Indicators of %s set to %s/%s\n",
				args[0], indicators.Online, indicators.Offline)
			return err
		},
	}
	cmd.Flags().String("online", "", "Word shown when the server is online")
	cmd.Flags().String("offline", "", "Word shown when the server is offline")
	return cmd
}
