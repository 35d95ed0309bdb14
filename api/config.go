package api

import (
	"github.com/NethermindEth/juno/core/felt"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// blockContextConfig is the on-disk shape of a BlockContext. Felt and
// 128-bit fields travel as strings so that hex and large decimal values
// survive YAML parsing intact.
type blockContextConfig struct {
	ChainID           string            `mapstructure:"chain-id"`
	BlockNumber       uint64            `mapstructure:"block-number"`
	BlockTimestamp    uint64            `mapstructure:"block-timestamp"`
	SequencerAddress  string            `mapstructure:"sequencer-address"`
	FeeTokenAddress   string            `mapstructure:"fee-token-address"`
	VMResourceFeeCost map[string]string `mapstructure:"vm-resource-fee-cost"`
	GasPrice          string            `mapstructure:"gas-price"`
	InvokeTxMaxNSteps uint32            `mapstructure:"invoke-tx-max-n-steps"`
	ValidateMaxNSteps uint32            `mapstructure:"validate-max-n-steps"`
	MaxRecursionDepth uint64            `mapstructure:"max-recursion-depth"`
}

// LoadBlockContext reads a block context from a YAML file.
func LoadBlockContext(path string) (*BlockContext, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, "read block context config")
	}

	var cfg blockContextConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal block context config")
	}
	return cfg.build()
}

func (cfg *blockContextConfig) build() (*BlockContext, error) {
	sequencer, err := new(felt.Felt).SetString(cfg.SequencerAddress)
	if err != nil {
		return nil, errors.Wrap(err, "parse sequencer address")
	}
	feeToken, err := new(felt.Felt).SetString(cfg.FeeTokenAddress)
	if err != nil {
		return nil, errors.Wrap(err, "parse fee token address")
	}
	gasPrice, err := uint256.FromDecimal(cfg.GasPrice)
	if err != nil {
		return nil, errors.Wrap(err, "parse gas price")
	}

	feeCost := make(map[string]Fixed, len(cfg.VMResourceFeeCost))
	for resource, weight := range cfg.VMResourceFeeCost {
		fixed, err := ParseFixed(weight)
		if err != nil {
			return nil, errors.Wrapf(err, "parse fee cost of %q", resource)
		}
		feeCost[resource] = fixed
	}

	blockContext := &BlockContext{
		ChainID:           cfg.ChainID,
		BlockNumber:       cfg.BlockNumber,
		BlockTimestamp:    cfg.BlockTimestamp,
		SequencerAddress:  *sequencer,
		FeeTokenAddress:   *feeToken,
		VMResourceFeeCost: feeCost,
		GasPrice:          gasPrice,
		InvokeTxMaxNSteps: cfg.InvokeTxMaxNSteps,
		ValidateMaxNSteps: cfg.ValidateMaxNSteps,
		MaxRecursionDepth: cfg.MaxRecursionDepth,
	}
	if err := blockContext.Validate(); err != nil {
		return nil, err
	}
	return blockContext, nil
}
