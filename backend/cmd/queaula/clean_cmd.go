package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"que-aula/backend/internal/repository"
	"que-aula/backend/internal/service"
)

func newCleanCmd(root *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "清空全部课程、班组、时段、教师与教室",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("该操作不可恢复，请加 --yes 确认")
			}

			e, err := root.open()
			if err != nil {
				return err
			}
			defer e.close()

			svc := service.NewClassService(repository.NewRepository(e.db), nil, nil, nil, e.logger)
			if err := svc.Clean(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "数据已清空")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "确认清空")
	return cmd
}
