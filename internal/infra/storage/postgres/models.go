package postgres

import (
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/gabapcia/walletsync/internal/operation"
)

type walletModel struct {
	UID       string `gorm:"primaryKey"`
	CreatedAt time.Time
}

func (walletModel) TableName() string { return "wallets" }

type accountModel struct {
	UID       string `gorm:"primaryKey"`
	WalletUID string
	Currency  string
	CreatedAt time.Time
}

func (accountModel) TableName() string { return "accounts" }

func (m accountModel) account() operation.Account {
	return operation.Account{UID: m.UID, WalletUID: m.WalletUID, Currency: m.Currency}
}

type keychainAddressModel struct {
	ID         uint64 `gorm:"primaryKey"`
	AccountUID string
	Address    string
}

func (keychainAddressModel) TableName() string { return "keychain_addresses" }

type blockModel struct {
	Hash     string `gorm:"primaryKey"`
	Height   uint64
	Time     time.Time
	Currency string
}

func (blockModel) TableName() string { return "blocks" }

func newBlockModel(b operation.Block) blockModel {
	return blockModel{Hash: b.Hash, Height: b.Height, Time: b.Time.UTC(), Currency: b.Currency}
}

func (m blockModel) block() operation.Block {
	return operation.Block{Hash: m.Hash, Height: m.Height, Time: m.Time.UTC(), Currency: m.Currency}
}

type operationModel struct {
	UID           string `gorm:"primaryKey"`
	AccountUID    string
	WalletUID     string
	Currency      string
	Type          string
	Amount        *string `gorm:"type:numeric"`
	AmountUnknown bool
	Fees          string `gorm:"type:numeric"`
	Senders       string `gorm:"type:jsonb"`
	Recipients    string `gorm:"type:jsonb"`
	Date          time.Time
	BlockHash     *string
	TxHash        string
	Success       bool
	Trust         string
	Payload       *string `gorm:"type:jsonb"`
}

func (operationModel) TableName() string { return "operations" }

type stateModel struct {
	AccountUID   string `gorm:"primaryKey"`
	Synchronizer string `gorm:"primaryKey"`
	State        string `gorm:"type:jsonb"`
}

func (stateModel) TableName() string { return "synchronizer_states" }

func newOperationModel(op operation.Operation) (operationModel, error) {
	m := operationModel{
		UID:           op.UID,
		AccountUID:    op.AccountUID,
		WalletUID:     op.WalletUID,
		Currency:      op.Currency,
		Type:          string(op.Type),
		AmountUnknown: op.AmountUnknown,
		Fees:          "0",
		Date:          op.Date.UTC(),
		TxHash:        op.TxHash,
		Success:       op.Success,
		Trust:         string(op.Trust),
	}

	if op.Amount != nil {
		amount := op.Amount.String()
		m.Amount = &amount
	}

	if op.Fees != nil {
		m.Fees = op.Fees.String()
	}

	senders, err := marshalList(op.Senders)
	if err != nil {
		return operationModel{}, err
	}

	recipients, err := marshalList(op.Recipients)
	if err != nil {
		return operationModel{}, err
	}

	m.Senders, m.Recipients = senders, recipients

	if len(op.Payload) > 0 {
		raw, err := json.Marshal(op.Payload)
		if err != nil {
			return operationModel{}, err
		}

		payload := string(raw)
		m.Payload = &payload
	}

	if op.Block != nil {
		m.BlockHash = &op.Block.Hash
	}

	return m, nil
}

func (m operationModel) operation(block *operation.Block) (operation.Operation, error) {
	op := operation.Operation{
		UID:           m.UID,
		AccountUID:    m.AccountUID,
		WalletUID:     m.WalletUID,
		Currency:      m.Currency,
		Type:          operation.Type(m.Type),
		AmountUnknown: m.AmountUnknown,
		Date:          m.Date.UTC(),
		Block:         block,
		TxHash:        m.TxHash,
		Success:       m.Success,
		Trust:         operation.Trust(m.Trust),
	}

	var err error
	if m.Amount != nil {
		if op.Amount, err = parseInt(*m.Amount); err != nil {
			return operation.Operation{}, err
		}
	}

	if op.Fees, err = parseInt(m.Fees); err != nil {
		return operation.Operation{}, err
	}

	if err := json.Unmarshal([]byte(m.Senders), &op.Senders); err != nil {
		return operation.Operation{}, err
	}

	if err := json.Unmarshal([]byte(m.Recipients), &op.Recipients); err != nil {
		return operation.Operation{}, err
	}

	if m.Payload != nil {
		if err := json.Unmarshal([]byte(*m.Payload), &op.Payload); err != nil {
			return operation.Operation{}, err
		}
	}

	return op, nil
}

func marshalList(s []string) (string, error) {
	if s == nil {
		s = []string{}
	}

	raw, err := json.Marshal(s)
	return string(raw), err
}

func parseInt(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}

	return n, nil
}
