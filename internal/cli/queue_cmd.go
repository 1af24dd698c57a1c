package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sbenjam1n/assetgen/internal/batch"
	"github.com/sbenjam1n/assetgen/internal/queue"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Distribute task compilation over a Redis stream",
}

var queuePushCmd = &cobra.Command{
	Use:   "push [task...]",
	Short: "Queue every task, or the named tasks, for compilation",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		q, closeQ, err := openQueue(ctx)
		if err != nil {
			return err
		}
		defer closeQ()

		driver := batch.New(cfg, logger)
		dirs, err := driver.Tasks()
		if len(args) > 0 {
			dirs, err = driver.Select(args)
		}
		if err != nil {
			return err
		}

		runID := newRunID()
		for _, dir := range dirs {
			rel, err := filepath.Rel(cfg.TasksRoot(), dir)
			if err != nil {
				return err
			}
			id, err := q.PushTask(ctx, queue.TaskMessage{RunID: runID, TaskPath: filepath.ToSlash(rel)})
			if err != nil {
				return err
			}
			logger.Debug("queued task", zap.String("task", rel), zap.String("id", id))
		}
		fmt.Printf("Queued %d tasks (run %s)\n", len(dirs), runID)
		return nil
	},
}

var queueWorkCmd = &cobra.Command{
	Use:   "work",
	Short: "Compile queued tasks until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		consumer, _ := cmd.Flags().GetString("consumer")
		block, _ := cmd.Flags().GetDuration("block")
		ctx := cmd.Context()

		q, closeQ, err := openQueue(ctx)
		if err != nil {
			return err
		}
		defer closeQ()

		driver, cleanup, err := newDriver(ctx, true)
		if err != nil {
			return err
		}
		defer cleanup()

		logger.Info("waiting for tasks", zap.String("consumer", consumer))
		for ctx.Err() == nil {
			msg, id, err := q.ReadTask(ctx, consumer, block)
			if err != nil {
				if ctx.Err() != nil {
					break
				}
				return err
			}
			if msg == nil {
				continue
			}
			workTask(ctx, driver, msg)
			if err := q.AckTask(ctx, id); err != nil {
				logger.Warn("ack task", zap.String("id", id), zap.Error(err))
			}
		}
		return nil
	},
}

func workTask(ctx context.Context, driver *batch.Driver, msg *queue.TaskMessage) {
	dirs, err := driver.Select([]string{msg.TaskPath})
	if err != nil {
		logger.Error("queued task not found", zap.String("task", msg.TaskPath), zap.Error(err))
		return
	}
	driver.RunTasks(ctx, msg.RunID, dirs)
}

var queueStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show queued and unacknowledged tasks in Redis",
	RunE: func(cmd *cobra.Command, args []string) error {
		rdb, err := connectRedis()
		if err != nil {
			return err
		}
		defer rdb.Close()

		length, pending, err := queue.New(rdb).Status(cmd.Context())
		if err != nil {
			return fmt.Errorf("queue status: %w", err)
		}

		fmt.Printf("Queue Status:\n")
		fmt.Printf("  %s: %d entries, %d pending\n", queue.StreamCompile, length, pending)
		return nil
	},
}

func openQueue(ctx context.Context) (*queue.Queue, func(), error) {
	rdb, err := connectRedis()
	if err != nil {
		return nil, func() {}, err
	}
	q := queue.New(rdb)
	if err := q.EnsureStream(ctx); err != nil {
		rdb.Close()
		return nil, func() {}, err
	}
	return q, func() { rdb.Close() }, nil
}

func init() {
	host, _ := os.Hostname()
	queueWorkCmd.Flags().String("consumer", fmt.Sprintf("%s-%d", host, os.Getpid()), "consumer name within the group")
	queueWorkCmd.Flags().Duration("block", 5*time.Second, "how long one read waits for a task")

	queueCmd.AddCommand(queuePushCmd)
	queueCmd.AddCommand(queueWorkCmd)
	queueCmd.AddCommand(queueStatusCmd)
}
