// Package config parses the trainer's command line into a Config.
package config

import (
	"os"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/pkg/errors"
)

// Program is the binary name shown in usage output.
const Program = "gnnlfhf"

var (
	// ErrUnknownDataset is returned by Validate for dataset names outside
	// cora, pubmed and citeseer.
	ErrUnknownDataset = errors.New("unknown dataset")

	// ErrHelp is returned by Load after printing usage for -h/--help.
	ErrHelp = arg.ErrHelp
)

var datasets = map[string]bool{
	"cora":     true,
	"pubmed":   true,
	"citeseer": true,
}

// Config holds every hyperparameter of a run. It is not modified after Load.
type Config struct {
	LR            float64 `arg:"--lr" help:"learning rate"`
	NEpoch        int     `arg:"--n_epoch" help:"number of epoch"`
	HiddenDim     int     `arg:"--hidden_dim" help:"dimension of hidden layers"`
	DropRate      float64 `arg:"--drop_rate" help:"drop rate"`
	NumLayers     int     `arg:"--num_layers" help:"number of layers"`
	RegLambda     float64 `arg:"--reg_lambda" help:"weight of the L2 penalty on the first layer"`
	Dataset       string  `arg:"--dataset" help:"dataset: cora, pubmed or citeseer"`
	ModelType     string  `arg:"--model_type" help:"GNN-LF or GNN-HF"`
	ModelForm     string  `arg:"--model_form" help:"closed or iterative"`
	DatasetPath   string  `arg:"--dataset_path" help:"path to the dataset root"`
	BestModelPath string  `arg:"--best_model_path" help:"path to save best model"`
	Alpha         float64 `arg:"--alpha" help:"the value of alpha"`
	Mu            float64 `arg:"--mu" help:"the value of mu"`
	Beta          float64 `arg:"--beta" help:"the value of beta"`
	NIter         int     `arg:"--niter" help:"the value of niter"`
	GPU           int     `arg:"--gpu" help:"accelerator index, negative for CPU (use --gpu=-1)"`
	Seed          int64   `arg:"--seed" help:"random seed, 0 for time based"`
	LogLevel      string  `arg:"--log_level" help:"debug, info, warn or error"`
}

// Default returns the configuration used when no flags are given.
func Default() *Config {
	return &Config{
		LR:            0.01,
		NEpoch:        200,
		HiddenDim:     64,
		DropRate:      0.8,
		NumLayers:     2,
		RegLambda:     5e-3,
		Dataset:       "cora",
		ModelType:     "GNN-LF",
		ModelForm:     "closed",
		DatasetPath:   "./",
		BestModelPath: "./",
		Alpha:         0.3,
		Mu:            0.1,
		Beta:          0.1,
		NIter:         20,
		GPU:           0,
		LogLevel:      "info",
	}
}

// Description is printed at the top of the usage text.
func (Config) Description() string {
	return "Golang implementation of GNN-LF / GNN-HF\n" +
		"Interpreting and Unifying Graph Neural Networks with An Optimization Framework (WWW 2021)\n"
}

// Load parses args (without the program name) on top of Default. Usage is
// written to stdout and ErrHelp returned for -h/--help.
func Load(args []string) (*Config, error) {
	cfg := Default()
	p, err := arg.NewParser(arg.Config{Program: Program}, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "build argument parser")
	}

	if err := p.Parse(args); err != nil {
		if err == arg.ErrHelp {
			p.WriteHelp(os.Stdout)
			return nil, ErrHelp
		}
		return nil, errors.Wrap(err, "parse arguments")
	}
	return cfg, nil
}

// Validate checks the dataset name, case-insensitively. It is the only
// validation performed on the configuration.
func (c *Config) Validate() error {
	if !datasets[strings.ToLower(c.Dataset)] {
		return errors.Wrapf(ErrUnknownDataset, "%s", c.Dataset)
	}
	return nil
}

// CheckpointPath returns the best-weights file for a model name:
// BestModelPath + name + ".npz".
func (c *Config) CheckpointPath(name string) string {
	return c.BestModelPath + name + ".npz"
}
