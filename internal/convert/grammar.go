// Package convert translates between Zenith wire shapes and domain types.
// Functions here never catch their own errors; a failure is a *domain.DataError
// returned to the subscription layer.
package convert

import (
	"fmt"
	"strings"

	"zenith-sync/internal/domain"
)

// Grammar delimiters.
const (
	componentSeparator  = ':'
	environmentOpener   = '['
	environmentCloser   = ']'
	codeMarketSeparator = "."
)

type parseState int

const (
	stateOutStart parseState = iota
	stateInExchange
	stateInM1
	stateInM2
	stateInEnvironment
	stateOutFinished
)

// environmentedCode is a decomposed EXCHANGE[:M1[:M2]][[Environment]] string.
type environmentedCode struct {
	Exchange       string
	M1             string
	M2             string
	Environment    string
	HasEnvironment bool
}

// code rejoins the exchange and market components without the environment.
func (c environmentedCode) code() string {
	code := c.Exchange
	if c.M1 != "" {
		code += string(componentSeparator) + c.M1
	}
	if c.M2 != "" {
		code += string(componentSeparator) + c.M2
	}
	return code
}

func grammarError(code domain.ErrorCode, raw string, pos int) error {
	return domain.NewDataError(code, fmt.Sprintf("%q at %d", raw, pos))
}

// parseEnvironmentedCode runs the character state machine over raw.
func parseEnvironmentedCode(raw string) (environmentedCode, error) {
	var (
		result environmentedCode
		state  = stateOutStart
		b      strings.Builder
	)

	for i, ch := range raw {
		switch state {
		case stateOutStart:
			switch ch {
			case componentSeparator, environmentOpener, environmentCloser:
				return result, grammarError(domain.CodeMarketUnexpectedDelimiter, raw, i)
			default:
				b.WriteRune(ch)
				state = stateInExchange
			}

		case stateInExchange, stateInM1, stateInM2:
			switch ch {
			case componentSeparator:
				if state == stateInM2 {
					return result, grammarError(domain.CodeMarketUnexpectedDelimiter, raw, i)
				}
				if b.Len() == 0 {
					return result, grammarError(domain.CodeMarketEmptyComponent, raw, i)
				}
				setComponent(&result, state, b.String())
				b.Reset()
				if state == stateInExchange {
					state = stateInM1
				} else {
					state = stateInM2
				}
			case environmentOpener:
				if b.Len() == 0 {
					return result, grammarError(domain.CodeMarketEmptyComponent, raw, i)
				}
				setComponent(&result, state, b.String())
				b.Reset()
				state = stateInEnvironment
			case environmentCloser:
				return result, grammarError(domain.CodeMarketUnexpectedDelimiter, raw, i)
			default:
				b.WriteRune(ch)
			}

		case stateInEnvironment:
			switch ch {
			case environmentCloser:
				if b.Len() == 0 {
					return result, grammarError(domain.CodeMarketEmptyComponent, raw, i)
				}
				result.Environment = b.String()
				result.HasEnvironment = true
				b.Reset()
				state = stateOutFinished
			case componentSeparator, environmentOpener:
				return result, grammarError(domain.CodeMarketUnexpectedDelimiter, raw, i)
			default:
				b.WriteRune(ch)
			}

		case stateOutFinished:
			return result, grammarError(domain.CodeMarketTrailingText, raw, i)

		default:
			domain.PanicInternal(domain.CodeUnhandledEnum, fmt.Sprintf("parse state %d", state))
		}
	}

	switch state {
	case stateOutStart:
		return result, domain.NewDataError(domain.CodeMarketEmpty, fmt.Sprintf("%q", raw))
	case stateInExchange, stateInM1, stateInM2:
		if b.Len() == 0 {
			return result, grammarError(domain.CodeMarketEmptyComponent, raw, len(raw))
		}
		setComponent(&result, state, b.String())
	case stateInEnvironment:
		return result, grammarError(domain.CodeMarketEnvironmentNotClosed, raw, len(raw))
	case stateOutFinished:
	}
	return result, nil
}

func setComponent(c *environmentedCode, state parseState, value string) {
	switch state {
	case stateInExchange:
		c.Exchange = value
	case stateInM1:
		c.M1 = value
	case stateInM2:
		c.M2 = value
	default:
		domain.PanicInternal(domain.CodeUnhandledEnum, fmt.Sprintf("component state %d", state))
	}
}

// DecodeMarket parses an environment qualified market code such as "ASX:TM[Demo]".
func DecodeMarket(raw string) (domain.MarketID, domain.DataEnvironmentID, error) {
	parsed, err := parseEnvironmentedCode(raw)
	if err != nil {
		return "", "", err
	}
	market, ok := marketTable.fromWire[parsed.code()]
	if !ok {
		return "", "", domain.NewDataError(domain.CodeUnknownMarket, fmt.Sprintf("%q", raw))
	}
	env, err := decodeDataEnvironment(parsed, raw)
	if err != nil {
		return "", "", err
	}
	return market, env, nil
}

// EncodeMarket is the inverse of DecodeMarket.
func EncodeMarket(market domain.MarketID, env domain.DataEnvironmentID) string {
	return marketTable.encode(market) + encodeDataEnvironment(env)
}

// DecodeExchange parses an environment qualified exchange code such as "ASX[Demo]".
func DecodeExchange(raw string) (domain.ExchangeID, domain.DataEnvironmentID, error) {
	parsed, err := parseEnvironmentedCode(raw)
	if err != nil {
		return "", "", err
	}
	if parsed.M1 != "" {
		return "", "", domain.NewDataError(domain.CodeUnknownExchange, fmt.Sprintf("%q", raw))
	}
	exchange, err := exchangeTable.decode(parsed.Exchange)
	if err != nil {
		return "", "", err
	}
	env, err := decodeDataEnvironment(parsed, raw)
	if err != nil {
		return "", "", err
	}
	return exchange, env, nil
}

// EncodeExchange is the inverse of DecodeExchange.
func EncodeExchange(exchange domain.ExchangeID, env domain.DataEnvironmentID) string {
	return exchangeTable.encode(exchange) + encodeDataEnvironment(env)
}

// DecodeAccount parses "AccountId[Environment]". A missing suffix is Production.
func DecodeAccount(raw string) (domain.AccountKey, error) {
	if raw == "" {
		return domain.AccountKey{}, domain.NewDataError(domain.CodeAccountEmpty, "")
	}
	open := strings.IndexByte(raw, environmentOpener)
	if open < 0 {
		if strings.IndexByte(raw, environmentCloser) >= 0 {
			return domain.AccountKey{}, domain.NewDataError(domain.CodeAccountMalformed, fmt.Sprintf("%q", raw))
		}
		return domain.AccountKey{ID: raw, Environment: domain.TradingEnvironmentProduction}, nil
	}
	if open == 0 {
		return domain.AccountKey{}, domain.NewDataError(domain.CodeAccountEmpty, fmt.Sprintf("%q", raw))
	}
	if !strings.HasSuffix(raw, string(environmentCloser)) || strings.Count(raw, string(environmentOpener)) != 1 {
		return domain.AccountKey{}, domain.NewDataError(domain.CodeAccountMalformed, fmt.Sprintf("%q", raw))
	}
	envText := raw[open+1 : len(raw)-1]
	if envText == "" {
		return domain.AccountKey{}, domain.NewDataError(domain.CodeAccountMalformed, fmt.Sprintf("%q", raw))
	}
	env, ok := tradingEnvironmentFromWire[envText]
	if !ok {
		return domain.AccountKey{}, domain.NewDataError(domain.CodeUnknownTradingEnvironment, fmt.Sprintf("%q", raw))
	}
	return domain.AccountKey{ID: raw[:open], Environment: env}, nil
}

// EncodeAccount is the inverse of DecodeAccount.
func EncodeAccount(key domain.AccountKey) string {
	return key.ID + encodeTradingEnvironment(key.Environment)
}

// DecodeSymbol parses "Code.MarketEncoding", splitting at the first separator.
func DecodeSymbol(raw string) (domain.LitIvemID, error) {
	code, market, found := strings.Cut(raw, codeMarketSeparator)
	if !found {
		return domain.LitIvemID{}, domain.NewDataError(domain.CodeSymbolMissingSeparator, fmt.Sprintf("%q", raw))
	}
	if code == "" {
		return domain.LitIvemID{}, domain.NewDataError(domain.CodeSymbolEmptyCode, fmt.Sprintf("%q", raw))
	}
	marketID, env, err := DecodeMarket(market)
	if err != nil {
		return domain.LitIvemID{}, fmt.Errorf("symbol %q: %w", raw, err)
	}
	return domain.LitIvemID{Code: code, Market: marketID, Environment: env}, nil
}

// EncodeSymbol is the inverse of DecodeSymbol. Codes may not contain the separator.
func EncodeSymbol(id domain.LitIvemID) (string, error) {
	if id.Code == "" {
		return "", domain.NewDataError(domain.CodeSymbolEmptyCode, id.MapKey())
	}
	if strings.Contains(id.Code, codeMarketSeparator) {
		return "", domain.NewDataError(domain.CodeSymbolCodeHasSeparator, fmt.Sprintf("%q", id.Code))
	}
	return id.Code + codeMarketSeparator + EncodeMarket(id.Market, id.Environment), nil
}

var dataEnvironmentToWire = map[domain.DataEnvironmentID]string{
	domain.DataEnvironmentProduction:        "",
	domain.DataEnvironmentDelayedProduction: "Delayed",
	domain.DataEnvironmentDemo:              "Demo",
	domain.DataEnvironmentSample:            "Sample",
}

var dataEnvironmentFromWire = invert(dataEnvironmentToWire)

var tradingEnvironmentToWire = map[domain.TradingEnvironmentID]string{
	domain.TradingEnvironmentProduction: "",
	domain.TradingEnvironmentDemo:       "Demo",
}

var tradingEnvironmentFromWire = invert(tradingEnvironmentToWire)

func decodeDataEnvironment(parsed environmentedCode, raw string) (domain.DataEnvironmentID, error) {
	if !parsed.HasEnvironment {
		return domain.DataEnvironmentProduction, nil
	}
	env, ok := dataEnvironmentFromWire[parsed.Environment]
	if !ok || parsed.Environment == "" {
		return "", domain.NewDataError(domain.CodeUnknownDataEnvironment, fmt.Sprintf("%q", raw))
	}
	return env, nil
}

func encodeDataEnvironment(env domain.DataEnvironmentID) string {
	text, ok := dataEnvironmentToWire[env]
	if !ok {
		domain.PanicInternal(domain.CodeUnhandledEnum, "data environment "+string(env))
	}
	if text == "" {
		return ""
	}
	return string(environmentOpener) + text + string(environmentCloser)
}

func encodeTradingEnvironment(env domain.TradingEnvironmentID) string {
	text, ok := tradingEnvironmentToWire[env]
	if !ok {
		domain.PanicInternal(domain.CodeUnhandledEnum, "trading environment "+string(env))
	}
	if text == "" {
		return ""
	}
	return string(environmentOpener) + text + string(environmentCloser)
}

func invert[K comparable](m map[K]string) map[string]K {
	out := make(map[string]K, len(m))
	for k, v := range m {
		if _, dup := out[v]; dup {
			panic(fmt.Sprintf("convert: duplicate wire value %q", v))
		}
		out[v] = k
	}
	return out
}
