package domain

import (
	"errors"
	"fmt"
)

// ErrorCode is a stable tag identifying where a data or internal error was raised.
type ErrorCode string

// Data error codes raised while decoding wire content.
const (
	CodeControllerMismatch         ErrorCode = "ZCM10001"
	CodeTopicMismatch              ErrorCode = "ZCM10002"
	CodeUnexpectedAction           ErrorCode = "ZCM10003"
	CodeMissingData                ErrorCode = "ZCM10004"
	CodeInvalidJSON                ErrorCode = "ZCM10005"
	CodeMissingTransactionID       ErrorCode = "ZCM10006"
	CodeMarketEmpty                ErrorCode = "ZCE20001"
	CodeMarketUnexpectedDelimiter  ErrorCode = "ZCE20002"
	CodeMarketEmptyComponent       ErrorCode = "ZCE20003"
	CodeMarketEnvironmentNotClosed ErrorCode = "ZCE20004"
	CodeMarketTrailingText         ErrorCode = "ZCE20005"
	CodeUnknownExchange            ErrorCode = "ZCE20006"
	CodeUnknownMarket              ErrorCode = "ZCE20007"
	CodeUnknownDataEnvironment     ErrorCode = "ZCE20008"
	CodeUnknownTradingEnvironment  ErrorCode = "ZCE20009"
	CodeAccountEmpty               ErrorCode = "ZCE20010"
	CodeAccountMalformed           ErrorCode = "ZCE20011"
	CodeSymbolMissingSeparator     ErrorCode = "ZCE20012"
	CodeSymbolEmptyCode            ErrorCode = "ZCE20013"
	CodeSymbolCodeHasSeparator     ErrorCode = "ZCE20014"
	CodeUnknownCurrency            ErrorCode = "ZCV30001"
	CodeUnknownFeedClass           ErrorCode = "ZCV30002"
	CodeUnknownFeedStatus          ErrorCode = "ZCV30003"
	CodeUnknownOrderSide           ErrorCode = "ZCV30004"
	CodeUnknownOrderType           ErrorCode = "ZCV30005"
	CodeUnknownTimeInForce         ErrorCode = "ZCV30006"
	CodeUnknownHoldingStyle        ErrorCode = "ZCV30007"
	CodeUnknownChangeType          ErrorCode = "ZCV30008"
	CodeUnknownTradingFeed         ErrorCode = "ZCV30009"
	CodeUnknownTriggerType         ErrorCode = "ZCV30010"
	CodeUnknownRouteAlgorithm      ErrorCode = "ZCV30011"
	CodeUnknownOrderRequestResult  ErrorCode = "ZCV30012"
	CodeUnknownTradeFlag           ErrorCode = "ZCV30013"
	CodeUnknownTradingStateAllow   ErrorCode = "ZCV30014"
	CodeUnknownDepthChangeType     ErrorCode = "ZCV30015"
	CodeUnknownChannelDistribution ErrorCode = "ZCV30016"
	CodeInvalidDateTime            ErrorCode = "ZCV30017"
	CodeAccountChangeMissingData   ErrorCode = "ZCA40001"
	CodeHoldingChangeMissingData   ErrorCode = "ZCA40002"
	CodeOrderChangeMissingData     ErrorCode = "ZCA40003"
	CodeBalanceChangeMissingData   ErrorCode = "ZCA40004"
	CodeOrderAccountIDChanged      ErrorCode = "ZCA40005"
	CodeOrderIDChanged             ErrorCode = "ZCA40006"
	CodeHoldingKeyChanged          ErrorCode = "ZCA40007"
	CodeAccountKeyChanged          ErrorCode = "ZCA40008"
	CodeRecordNotFound             ErrorCode = "ZCA40009"
	CodeRecordAlreadyExists        ErrorCode = "ZCA40010"
	CodeWrongAccount               ErrorCode = "ZCA40011"
	CodePersistedKeyInvalid        ErrorCode = "ZCA40012"
)

// Internal error codes raised when a branch assumed unreachable is hit.
const (
	CodeUnhandledDataDefinition ErrorCode = "ZII50001"
	CodeUnhandledListChange     ErrorCode = "ZII50002"
	CodeUnhandledEnum           ErrorCode = "ZII50003"
	CodeListReentrantChange     ErrorCode = "ZII50004"
	CodeListIndexOutOfRange     ErrorCode = "ZII50005"
	CodeListSlotNotReserved     ErrorCode = "ZII50006"
	CodeReplaceNotSupported     ErrorCode = "ZII50007"
	CodeSubscriptionState       ErrorCode = "ZII50008"
)

// ErrData matches every *DataError via errors.Is.
var ErrData = errors.New("data error")

// DataError reports malformed or unexpected wire content.
// It is fatal to the message being processed, not to the process.
type DataError struct {
	Code  ErrorCode
	Extra string
}

// NewDataError creates a DataError. Extra is truncated for log safety.
func NewDataError(code ErrorCode, extra string) *DataError {
	return &DataError{Code: code, Extra: Truncate(extra)}
}

func (e *DataError) Error() string {
	return fmt.Sprintf("data error %s: %s", e.Code, e.Extra)
}

// Is lets errors.Is(err, ErrData) match any DataError.
func (e *DataError) Is(target error) bool {
	return target == ErrData
}

// InternalError reports a programming defect. It is raised with panic and
// must not be recovered and ignored.
type InternalError struct {
	Code  ErrorCode
	Extra string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error %s: %s", e.Code, e.Extra)
}

// PanicInternal raises an InternalError.
func PanicInternal(code ErrorCode, extra string) {
	panic(&InternalError{Code: code, Extra: extra})
}

// IndexedError annotates a failure with the index of the batch element that caused it.
type IndexedError struct {
	Index int
	Err   error
}

func (e *IndexedError) Error() string {
	return fmt.Sprintf("element %d: %v", e.Index, e.Err)
}

func (e *IndexedError) Unwrap() error {
	return e.Err
}

// AtIndex wraps err with the failing element index. Nil stays nil.
func AtIndex(index int, err error) error {
	if err == nil {
		return nil
	}
	return &IndexedError{Index: index, Err: err}
}

// Truncate shortens s to 200 bytes for inclusion in error text.
func Truncate(s string) string {
	const n = 200
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
