package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/cnclabs/gnnlfhf/internal/config"
	"github.com/cnclabs/gnnlfhf/internal/logging"
	"github.com/cnclabs/gnnlfhf/internal/trainer"
	"github.com/cnclabs/gnnlfhf/pkg/planetoid"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err == config.ErrHelp {
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  ./gnnlfhf --dataset cora --dataset_path ./data/ --model_type GNN-LF --model_form closed --n_epoch 200 --lr 0.01")
		fmt.Println()
		fmt.Println("Dataset Layout:")
		fmt.Println("  <dataset_path>/cora/raw/cora.content, cora.cites")
		fmt.Println("  <dataset_path>/citeseer/raw/citeseer.content, citeseer.cites")
		fmt.Println("  <dataset_path>/pubmed/raw/Pubmed-Diabetes.NODE.paper.tab, Pubmed-Diabetes.DIRECTED.cites.tab")
		os.Exit(0)
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := trainer.Run(ctx, cfg, planetoid.Loader(), os.Stdout, logger); err != nil {
		logger.Error("training failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}
