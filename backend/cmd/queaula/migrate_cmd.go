package main

import (
	"github.com/spf13/cobra"

	"que-aula/backend/pkg/database"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	var down int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "执行内嵌的数据库迁移（--down N 回退最近 N 个版本）",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := root.open()
			if err != nil {
				return err
			}
			defer e.close()

			sqlDB, err := e.db.DB()
			if err != nil {
				return err
			}
			if down > 0 {
				return database.RollbackMigrations(sqlDB, down, e.logger)
			}
			return database.RunMigrations(sqlDB, e.logger)
		},
	}
	cmd.Flags().IntVar(&down, "down", 0, "回退的迁移版本数")

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "列出尚未执行的迁移版本",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := root.open()
			if err != nil {
				return err
			}
			defer e.close()

			sqlDB, err := e.db.DB()
			if err != nil {
				return err
			}
			pending, err := database.PendingMigrations(sqlDB)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{"pending": pending})
		},
	})
	return cmd
}
