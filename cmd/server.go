package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"SoundCircle/config"
	"SoundCircle/logger"
	"SoundCircle/server"

	"github.com/spf13/cobra"
)

var envFile string

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动SoundCircle服务器",
	Long:  `启动HTTP服务器，提供好友关系与歌单API`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd.Context())
	},
}

func runServer(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := os.Stat(envFile); err == nil {
		go func() {
			err := config.WatchEnvFile(ctx, envFile, a.applyReload)
			if err != nil {
				logger.Warn("配置文件监听失败", logger.ErrorField(err))
			}
		}()
	}

	srv := server.New(a.friends, a.playlists, cfg.JWTSecret)
	return srv.ListenAndServe(ctx, ":"+cfg.HTTPPort)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "被监听的 .env 文件，修改后重新加载日志级别与缓存时长")
	rootCmd.AddCommand(serverCmd)
}
