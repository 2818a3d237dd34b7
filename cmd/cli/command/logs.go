package command

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"immersionhub/cmd/cli/command/client"
	"immersionhub/internal/importer"
	"immersionhub/internal/microservices/http-api/dto"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Record, list and import immersion logs",
}

var logsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List logs, newest first",
	Example: `  immersionctl logs list --from 2026-10-01 --type anime
  immersionctl logs list --limit 10`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		q := client.LogQuery{TZ: tz}
		q.From, _ = cmd.Flags().GetString("from")
		q.To, _ = cmd.Flags().GetString("to")
		q.Type, _ = cmd.Flags().GetString("type")
		q.Limit, _ = cmd.Flags().GetInt("limit")

		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		resp, err := httpClient.ListLogs(cmd.Context(), q)
		if err != nil {
			return fmt.Errorf("failed to fetch logs: %w", err)
		}

		fmt.Println(renderLogs(resp.Items))
		return nil
	},
}

var logsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record an immersion session",
	Example: `  immersionctl logs add --type anime --episodes 3
  immersionctl logs add --type reading --chars 12000 --time 90 --date 2026-10-17
  immersionctl logs add --type audio --time 45 --description "podcast"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		logType, _ := flags.GetString("type")
		description, _ := flags.GetString("description")

		date := time.Now()
		if flags.Changed("date") {
			raw, _ := flags.GetString("date")
			loc, err := cliLocation()
			if err != nil {
				return err
			}
			if date, err = importer.ParseDate(raw, loc); err != nil {
				return err
			}
		}

		request := &dto.LogRequest{Type: logType, Date: date, Description: description}
		if flags.Changed("time") {
			minutes, _ := flags.GetFloat64("time")
			request.Time = &minutes
		}
		if flags.Changed("episodes") {
			episodes, _ := flags.GetInt("episodes")
			request.Episodes = &episodes
		}
		if flags.Changed("pages") {
			pages, _ := flags.GetInt("pages")
			request.Pages = &pages
		}
		if flags.Changed("chars") {
			chars, _ := flags.GetInt("chars")
			request.Chars = &chars
		}
		if flags.Changed("media-id") {
			mediaID, _ := flags.GetString("media-id")
			request.MediaID = &mediaID
		}

		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		log, err := httpClient.CreateLog(cmd.Context(), request)
		if err != nil {
			return fmt.Errorf("failed to create log: %w", err)
		}

		fmt.Println(color.GreenString("✓ Logged %s (+%d XP)", log.Type, log.XP))
		fmt.Println(renderLogs([]dto.LogResponse{*log}))
		return nil
	},
}

var logsImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import logs from a .csv or .xlsx file",
	Long: `Import logs from a spreadsheet. The header row must name at least the
type and date columns. Optional columns: description, time, episodes, pages, chars.
Valid rows are stored together; rejected rows are listed with their line number.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		result, err := httpClient.ImportLogs(cmd.Context(), filepath.Base(path), f, tz)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		fmt.Print(renderImportResult(result))
		return nil
	},
}

var logsDeleteCmd = &cobra.Command{
	Use:   "delete [log_id]",
	Short: "Delete a log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		if err := httpClient.DeleteLog(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete log: %w", err)
		}

		fmt.Println(color.GreenString("✓ Log %s deleted", args[0]))
		return nil
	},
}

var logsMediaCmd = &cobra.Command{
	Use:   "media [log_id]",
	Short: "Link a log to an AniList entry",
	Long: `Link a log to catalog media by AniList id. Anime and manga details are
fetched from AniList when it is reachable; the flags are used otherwise.
Anime logs without a time are counted using the episode duration.`,
	Example: `  immersionctl logs media 3f1c... --content-id 21`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		request := &dto.AssignMediaRequest{}
		request.ContentID, _ = flags.GetString("content-id")
		request.Type, _ = flags.GetString("type")
		request.TitleRomaji, _ = flags.GetString("title")
		if flags.Changed("episode-duration") {
			minutes, _ := flags.GetFloat64("episode-duration")
			request.EpisodeDuration = &minutes
		}

		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		log, err := httpClient.AssignMedia(cmd.Context(), args[0], request)
		if err != nil {
			return fmt.Errorf("failed to assign media: %w", err)
		}

		title := request.ContentID
		if log.Media != nil {
			title = log.Media.Title
		}
		fmt.Println(color.GreenString("✓ Linked to %s", title))
		fmt.Println(renderLogs([]dto.LogResponse{*log}))
		return nil
	},
}

// cliLocation resolves --tz for parsing dates typed on the command line.
func cliLocation() (*time.Location, error) {
	if tz == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid --tz %q: %w", tz, err)
	}
	return loc, nil
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.AddCommand(logsListCmd, logsAddCmd, logsImportCmd, logsDeleteCmd, logsMediaCmd)

	logsListCmd.Flags().String("from", "", "earliest date (YYYY-MM-DD or RFC3339)")
	logsListCmd.Flags().String("to", "", "latest date, a bare date includes the whole day")
	logsListCmd.Flags().String("type", "", "only this log type")
	logsListCmd.Flags().Int("limit", 50, "maximum number of logs")

	logsAddCmd.Flags().String("type", "", "anime, manga, reading, vn, video, audio, movie, \"tv show\" or other")
	logsAddCmd.Flags().String("date", "", "when the session happened (default now)")
	logsAddCmd.Flags().Float64("time", 0, "minutes spent")
	logsAddCmd.Flags().Int("episodes", 0, "episodes watched")
	logsAddCmd.Flags().Int("pages", 0, "pages read")
	logsAddCmd.Flags().Int("chars", 0, "characters read")
	logsAddCmd.Flags().String("description", "", "free-text note or title")
	logsAddCmd.Flags().String("media-id", "", "catalog media id")
	_ = logsAddCmd.MarkFlagRequired("type")

	logsMediaCmd.Flags().String("content-id", "", "AniList media id")
	logsMediaCmd.Flags().String("type", "", "media type (defaults to the log's type)")
	logsMediaCmd.Flags().String("title", "", "romaji title, used when AniList has none")
	logsMediaCmd.Flags().Float64("episode-duration", 0, "minutes per episode")
	_ = logsMediaCmd.MarkFlagRequired("content-id")
}
