package cmd

import (
	"SoundCircle/db"
	"SoundCircle/logger"
	"SoundCircle/model"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "数据库迁移",
	Long:  `根据模型自动创建或更新数据表与索引`,
	RunE: func(cmd *cobra.Command, args []string) error {
		gdb, err := db.ConnectGormDB(cfg)
		if err != nil {
			return err
		}
		defer db.CloseGormDB(gdb)

		if err := db.AutoMigrateModels(gdb, model.All()...); err != nil {
			return err
		}
		logger.Info("数据库迁移完成", logger.String("driver", cfg.DBDriver))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
