package interfaces

import (
	"github.com/ethereum/go-ethereum/core/types"

	"saleprobe/model"
)

type ABIParser interface {
	Start() error
	Parse(filepath string) error
	Decode(log types.Log) (model.DecodedLog, error)
	Stop() error
}

// LogDecoder turns raw receipt logs into named events.
type LogDecoder interface {
	Decode(logs []*types.Log) ([]model.DecodedLog, error)
	DecodeLog(log *types.Log) (model.DecodedLog, error)
}

type ArtifactSource interface {
	Artifact(name string) (*model.Artifact, error)
}
