package cmd

import (
	"errors"
	"fmt"
	"strings"

	"SoundCircle/model"

	"github.com/spf13/cobra"
)

var importTrack bool

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "外部曲库工具",
}

var catalogTrackCmd = &cobra.Command{
	Use:   "track <externalId>",
	Short: "查询外部曲库歌曲",
	Long:  `从外部曲库获取歌曲信息，使用 --import 时同时导入本地曲库。`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.catalog == nil {
			return errors.New("SPOTIFY_CLIENT_ID 未配置")
		}

		ctx := cmd.Context()
		ext, err := a.catalog.GetTrack(ctx, args[0])
		if err != nil {
			return err
		}
		printExternalTrack(ext)

		if !importTrack {
			return nil
		}
		track, err := a.resolver.Resolve(ctx, *ext)
		if err != nil {
			return err
		}
		fmt.Printf("本地歌曲ID: %s\n", track.ID)
		return nil
	},
}

func printExternalTrack(t *model.ExternalTrack) {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	fmt.Printf("歌曲: %s\n", t.Title)
	fmt.Printf("艺术家: %s\n", strings.Join(names, ", "))
	fmt.Printf("专辑: %s\n", t.Album)
	fmt.Printf("时长: %ds\n", t.DurationMs/1000)
	if t.ReleaseDate != "" {
		fmt.Printf("发行日期: %s\n", t.ReleaseDate)
	}
}

func init() {
	catalogTrackCmd.Flags().BoolVar(&importTrack, "import", false, "导入到本地曲库")
	catalogCmd.AddCommand(catalogTrackCmd)
	rootCmd.AddCommand(catalogCmd)
}
