package domain

import (
	"encoding/json"
	"fmt"
)

// AccountKey is the business identity of a brokerage account.
type AccountKey struct {
	ID          string
	Environment TradingEnvironmentID
}

// MapKey is the lookup key for the account. It matches the wire encoding.
func (k AccountKey) MapKey() string {
	if k.Environment == TradingEnvironmentProduction || k.Environment == "" {
		return k.ID
	}
	return k.ID + "[" + string(k.Environment) + "]"
}

func (k AccountKey) String() string {
	return k.MapKey()
}

// AccountGroupTypeID selects which accounts a group covers.
type AccountGroupTypeID string

const (
	AccountGroupAll    AccountGroupTypeID = "All"
	AccountGroupSingle AccountGroupTypeID = "Single"
)

// AccountGroup is either every account or exactly one account.
type AccountGroup struct {
	TypeID  AccountGroupTypeID
	Account AccountKey
}

// AllAccountsGroup returns the group covering every account.
func AllAccountsGroup() AccountGroup {
	return AccountGroup{TypeID: AccountGroupAll}
}

// SingleAccountGroup returns the group covering one account.
func SingleAccountGroup(key AccountKey) AccountGroup {
	return AccountGroup{TypeID: AccountGroupSingle, Account: key}
}

// Contains reports whether the account belongs to the group.
func (g AccountGroup) Contains(key AccountKey) bool {
	switch g.TypeID {
	case AccountGroupAll:
		return true
	case AccountGroupSingle:
		return g.Account == key
	default:
		PanicInternal(CodeUnhandledEnum, "account group "+string(g.TypeID))
		return false
	}
}

// MapKey identifies the group.
func (g AccountGroup) MapKey() string {
	if g.TypeID == AccountGroupSingle {
		return string(g.TypeID) + ":" + g.Account.MapKey()
	}
	return string(g.TypeID)
}

// PersistedKey is the saved form of an account or account group key.
type PersistedKey struct {
	TypeID        string `json:"typeId"`
	ID            string `json:"id,omitempty"`
	EnvironmentID string `json:"environmentId,omitempty"`
}

// PersistedAccountTypeID tags a persisted single account key.
const PersistedAccountTypeID = "BrokerageAccount"

// Persist returns the saved form of the account key.
// Production is the default environment and is omitted.
func (k AccountKey) Persist() PersistedKey {
	p := PersistedKey{TypeID: PersistedAccountTypeID, ID: k.ID}
	if k.Environment != TradingEnvironmentProduction {
		p.EnvironmentID = string(k.Environment)
	}
	return p
}

// Persist returns the saved form of the group.
func (g AccountGroup) Persist() PersistedKey {
	p := PersistedKey{TypeID: string(g.TypeID)}
	if g.TypeID == AccountGroupSingle {
		p.ID = g.Account.ID
		if g.Account.Environment != TradingEnvironmentProduction {
			p.EnvironmentID = string(g.Account.Environment)
		}
	}
	return p
}

// AccountKeyFromPersisted validates and converts a saved account key.
func AccountKeyFromPersisted(p PersistedKey) (AccountKey, error) {
	if p.TypeID != PersistedAccountTypeID {
		return AccountKey{}, NewDataError(CodePersistedKeyInvalid, "typeId "+p.TypeID)
	}
	return persistedAccount(p)
}

// AccountGroupFromPersisted validates and converts a saved group key.
func AccountGroupFromPersisted(p PersistedKey) (AccountGroup, error) {
	switch AccountGroupTypeID(p.TypeID) {
	case AccountGroupAll:
		return AllAccountsGroup(), nil
	case AccountGroupSingle:
		key, err := persistedAccount(p)
		if err != nil {
			return AccountGroup{}, err
		}
		return SingleAccountGroup(key), nil
	default:
		return AccountGroup{}, NewDataError(CodePersistedKeyInvalid, "typeId "+p.TypeID)
	}
}

func persistedAccount(p PersistedKey) (AccountKey, error) {
	if p.ID == "" {
		return AccountKey{}, NewDataError(CodePersistedKeyInvalid, "missing id")
	}
	env := TradingEnvironmentProduction
	if p.EnvironmentID != "" {
		env = TradingEnvironmentID(p.EnvironmentID)
		if !env.IsValid() {
			return AccountKey{}, NewDataError(CodePersistedKeyInvalid, "environmentId "+p.EnvironmentID)
		}
	}
	return AccountKey{ID: p.ID, Environment: env}, nil
}

// MarshalAccountGroup encodes a group as persisted key JSON.
func MarshalAccountGroup(g AccountGroup) ([]byte, error) {
	data, err := json.Marshal(g.Persist())
	if err != nil {
		return nil, fmt.Errorf("marshal account group: %w", err)
	}
	return data, nil
}

// UnmarshalAccountGroup decodes persisted key JSON.
func UnmarshalAccountGroup(data []byte) (AccountGroup, error) {
	var p PersistedKey
	if err := json.Unmarshal(data, &p); err != nil {
		return AccountGroup{}, NewDataError(CodePersistedKeyInvalid, err.Error())
	}
	return AccountGroupFromPersisted(p)
}

// IsValid reports whether env is a known trading environment.
func (env TradingEnvironmentID) IsValid() bool {
	for _, e := range AllTradingEnvironmentIDs {
		if e == env {
			return true
		}
	}
	return false
}

// IsValid reports whether env is a known data environment.
func (env DataEnvironmentID) IsValid() bool {
	for _, e := range AllDataEnvironmentIDs {
		if e == env {
			return true
		}
	}
	return false
}
