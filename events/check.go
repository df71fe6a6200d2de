package events

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"

	"saleprobe/contract"
	"saleprobe/helper"
	"saleprobe/interfaces"
	"saleprobe/model"
)

type tHelper interface {
	Helper()
}

// throwMarkers are the node error fragments that mean the EVM threw.
var throwMarkers = []string{"invalid opcode", "out of gas", "execution reverted"}

// Checker asserts the events of token and sale transactions. Raw receipt
// logs are decoded with the token and sale abis it was built with.
type Checker struct {
	token interfaces.LogDecoder
	sale  interfaces.LogDecoder
}

func NewChecker(token, sale interfaces.LogDecoder) *Checker {
	return &Checker{token: token, sale: sale}
}

func logsOf(result *model.TxResult) []model.DecodedLog {
	if result == nil {
		return nil
	}
	return result.Logs
}

func ExpectNoEvents(t assert.TestingT, result *model.TxResult) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	return assert.Empty(t, result.RawLogs(), "expected empty array of logs")
}

// ExpectThrow passes when err reports that the transaction threw.
func ExpectThrow(t assert.TestingT, err error) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	if err == nil {
		return assert.Fail(t, "Did not throw as expected")
	}
	if errors.Is(err, contract.ErrTxFailed) {
		return true
	}
	msg := err.Error()
	for _, marker := range throwMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return assert.Fail(t, fmt.Sprintf("Expected throw, but got %v instead", err))
}

func CheckTransferEvent(t assert.TestingT, log model.DecodedLog, from, to common.Address, value interface{}) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	if !checkName(t, log, Transfer) {
		return false
	}
	ok := checkAddress(t, log, "_from", from)
	ok = checkAddress(t, log, "_to", to) && ok
	return checkNumber(t, log, "_value", value) && ok
}

func (c *Checker) CheckTransferEventGroup(t assert.TestingT, result *model.TxResult, from, to common.Address, value interface{}) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	logs := logsOf(result)
	if !assert.Len(t, logs, 1, "expected a single %s log", Transfer) {
		return false
	}
	return CheckTransferEvent(t, logs[0], from, to, value)
}

func (c *Checker) CheckApprovalEventGroup(t assert.TestingT, result *model.TxResult, owner, spender common.Address, value interface{}) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	logs := logsOf(result)
	if !assert.Len(t, logs, 1, "expected a single %s log", Approval) {
		return false
	}
	log := logs[0]
	if !checkName(t, log, Approval) {
		return false
	}
	ok := checkAddress(t, log, "_owner", owner)
	ok = checkAddress(t, log, "_spender", spender) && ok
	return checkNumber(t, log, "_value", value) && ok
}

func (c *Checker) CheckWhitelistUpdatedEventGroup(t assert.TestingT, result *model.TxResult, account common.Address, phase interface{}) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	raw := result.RawLogs()
	if !assert.Len(t, raw, 1, "expected a single receipt log") {
		return false
	}
	log, ok := decodeOne(t, c.sale, raw[0])
	if !ok || !checkName(t, log, WhitelistUpdated) {
		return false
	}
	ok = checkAddress(t, log, "_account", account)
	return checkNumber(t, log, "_phase", phase) && ok
}

// CheckTokensPurchasedEventGroup expects the token Transfer to the
// beneficiary followed by the sale TokensPurchased event.
func (c *Checker) CheckTokensPurchasedEventGroup(t assert.TestingT, result *model.TxResult, from, beneficiary common.Address, cost, tokens interface{}) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	raw := result.RawLogs()
	if !assert.Len(t, raw, 2, "expected a transfer and a purchase receipt log") {
		return false
	}

	transfer, ok := decodeOne(t, c.token, raw[0])
	if !ok || !CheckTransferEvent(t, transfer, from, beneficiary, tokens) {
		return false
	}

	purchase, ok := decodeOne(t, c.sale, raw[1])
	if !ok || !checkName(t, purchase, TokensPurchased) {
		return false
	}
	ok = checkAddress(t, purchase, "_beneficiary", beneficiary)
	ok = checkNumber(t, purchase, "_cost", cost) && ok
	return checkNumber(t, purchase, "_tokens", tokens) && ok
}

func (c *Checker) CheckWalletChangedEventGroup(t assert.TestingT, result *model.TxResult, newWallet common.Address) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	logs := logsOf(result)
	if !assert.Len(t, logs, 1, "expected a single %s log", WalletChanged) {
		return false
	}
	if !checkName(t, logs[0], WalletChanged) {
		return false
	}
	return checkAddress(t, logs[0], "_newWallet", newWallet)
}

func (c *Checker) CheckPresaleAddedEventGroup(t assert.TestingT, result *model.TxResult, account common.Address, baseTokens, bonusTokens interface{}) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	logs := logsOf(result)
	if !assert.Len(t, logs, 1, "expected a single %s log", PresaleAdded) {
		return false
	}
	log := logs[0]
	if !checkName(t, log, PresaleAdded) {
		return false
	}
	ok := checkAddress(t, log, "_account", account)
	ok = checkNumber(t, log, "_baseTokens", baseTokens) && ok
	return checkNumber(t, log, "_bonusTokens", bonusTokens) && ok
}

func (c *Checker) CheckTokensReclaimedEventGroup(t assert.TestingT, result *model.TxResult, amount interface{}) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	logs := logsOf(result)
	if !assert.Len(t, logs, 1, "expected a single %s log", TokensReclaimed) {
		return false
	}
	if !checkName(t, logs[0], TokensReclaimed) {
		return false
	}
	return checkNumber(t, logs[0], "_amount", amount)
}

func (c *Checker) CheckFinalizedEventGroup(t assert.TestingT, result *model.TxResult) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	logs := logsOf(result)
	if !assert.Len(t, logs, 1, "expected a single %s log", Finalized) {
		return false
	}
	return checkName(t, logs[0], Finalized)
}

func decodeOne(t assert.TestingT, decoder interfaces.LogDecoder, raw *types.Log) (model.DecodedLog, bool) {
	logs, err := decoder.Decode([]*types.Log{raw})
	if !assert.NoError(t, err) {
		return model.DecodedLog{}, false
	}
	if !assert.Len(t, logs, 1, "decoder returned no log, abi has no events") {
		return model.DecodedLog{}, false
	}
	return logs[0], true
}

func checkName(t assert.TestingT, log model.DecodedLog, name string) bool {
	return assert.Equal(t, name, log.Event, "unexpected event")
}

func field(t assert.TestingT, log model.DecodedLog, name string) (interface{}, bool) {
	v, ok := log.Args[name]
	if !ok {
		return nil, assert.Fail(t, fmt.Sprintf("event %s has no field %s", log.Event, name))
	}
	return v, true
}

func checkAddress(t assert.TestingT, log model.DecodedLog, name string, want common.Address) bool {
	got, ok := field(t, log, name)
	if !ok {
		return false
	}
	return assert.Equal(t, want, got, "%s.%s", log.Event, name)
}

// checkNumber compares numerically, so an expected int matches a decoded
// uint8 or *big.Int of the same value.
func checkNumber(t assert.TestingT, log model.DecodedLog, name string, want interface{}) bool {
	got, ok := field(t, log, name)
	if !ok {
		return false
	}
	wantBig, err := helper.ToBig(want)
	if err != nil {
		return assert.Fail(t, fmt.Sprintf("%s.%s: invalid expected value: %v", log.Event, name, err))
	}
	gotBig, err := helper.ToBig(got)
	if err != nil {
		return assert.Fail(t, fmt.Sprintf("%s.%s: decoded value is not numeric: %v", log.Event, name, err))
	}
	if wantBig.Cmp(gotBig) != 0 {
		return assert.Fail(t, fmt.Sprintf("%s.%s: expected %s, got %s", log.Event, name, wantBig, gotBig))
	}
	return true
}
