package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"que-aula/backend/internal/dto"
	"que-aula/backend/internal/repository"
	"que-aula/backend/internal/service"
)

type seedOutput struct {
	Command    string           `json:"command"`
	DurationMS int64            `json:"duration_ms"`
	Summary    dto.BatchSummary `json:"summary"`
	Results    *dto.BatchResult `json:"results"`
}

func newSeedCmd(root *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "从 JSON 文件批量导入课程（已存在的课程会被跳过）",
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, err := readBatchFile(file)
			if err != nil {
				return err
			}

			e, err := root.open()
			if err != nil {
				return err
			}
			defer e.close()

			svc := service.NewClassService(repository.NewRepository(e.db), nil, nil, nil, e.logger)

			start := time.Now()
			res, err := svc.CreateClasses(cmd.Context(), batch)
			if err != nil {
				return fmt.Errorf("导入失败，已整体回滚: %w", err)
			}

			return writeJSON(cmd.OutOrStdout(), seedOutput{
				Command:    "seed",
				DurationMS: time.Since(start).Milliseconds(),
				Summary: dto.BatchSummary{
					Total:   len(batch),
					Created: len(res.Created),
					Skipped: len(res.Skipped),
					Errors:  len(res.Errors),
				},
				Results: res,
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "classes.json", "课程 JSON 文件（数组或 {\"classes\": [...]}）")
	return cmd
}

func readBatchFile(path string) ([]dto.NestedSubject, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开种子文件失败: %w", err)
	}
	defer f.Close()
	return decodeBatch(f)
}

// decodeBatch 接受课程数组或 { "classes": [...] }
func decodeBatch(r io.Reader) ([]dto.NestedSubject, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("读取种子文件失败: %w", err)
	}
	raw = bytes.TrimSpace(raw)

	var batch []dto.NestedSubject
	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &batch); err != nil {
			return nil, fmt.Errorf("解析种子文件失败: %w", err)
		}
	} else {
		var wrapped dto.CreateClassesRequest
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, fmt.Errorf("解析种子文件失败: %w", err)
		}
		batch = wrapped.Classes
	}

	if len(batch) == 0 {
		return nil, service.ErrEmptyBatch
	}
	return batch, nil
}
