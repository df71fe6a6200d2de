package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"saleprobe/model"
)

var (
	ErrArtifactNotFound = errors.New("artifact not found")
	ErrUnlinkedBytecode = errors.New("bytecode has unlinked library placeholders")
)

type truffleArtifact struct {
	ContractName string          `json:"contractName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     string          `json:"bytecode"`
}

// LoadArtifact reads a truffle json artifact or a bare .abi file.
func LoadArtifact(filename string) (*model.Artifact, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	base := filepath.Base(filename)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if filepath.Ext(filename) == ".abi" {
		parsed, err := abi.JSON(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("parse abi %s: %w", filename, err)
		}
		return &model.Artifact{ContractName: name, ABI: parsed, Source: filename}, nil
	}
	artifact, err := ParseArtifact(data)
	if err != nil {
		return nil, fmt.Errorf("parse artifact %s: %w", filename, err)
	}
	if artifact.ContractName == "" {
		artifact.ContractName = name
	}
	artifact.Source = filename
	return artifact, nil
}

func ParseArtifact(data []byte) (*model.Artifact, error) {
	var raw truffleArtifact
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if len(raw.ABI) == 0 {
		return nil, errors.New("artifact has no abi")
	}
	parsed, err := abi.JSON(bytes.NewReader(raw.ABI))
	if err != nil {
		return nil, err
	}
	artifact := &model.Artifact{ContractName: raw.ContractName, ABI: parsed}
	if raw.Bytecode != "" && raw.Bytecode != "0x" {
		if strings.Contains(raw.Bytecode, "__") {
			return nil, ErrUnlinkedBytecode
		}
		code := raw.Bytecode
		if !strings.HasPrefix(code, "0x") {
			code = "0x" + code
		}
		artifact.Bytecode, err = hexutil.Decode(code)
		if err != nil {
			return nil, fmt.Errorf("bytecode: %w", err)
		}
	}
	return artifact, nil
}
