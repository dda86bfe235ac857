package model

import (
	"encoding/binary"
	"fmt"
)

// VaultSize is the encoded length of a Vault: owner, skin_id, loan_amount, total_deposits.
const VaultSize = IdentitySize + 8 + 8 + 8

type CollateralStatus string

const (
	CollateralFree           CollateralStatus = "free"
	CollateralCollateralized CollateralStatus = "collateralized"
)

// Vault is the per-owner record for deposits and the collateralized loan.
type Vault struct {
	Owner         Identity `json:"owner"`
	SkinID        uint64   `json:"skin_id"`
	LoanAmount    uint64   `json:"loan_amount"`
	TotalDeposits uint64   `json:"total_deposits"`
}

func (v Vault) CollateralStatus() CollateralStatus {
	if v.SkinID == 0 {
		return CollateralFree
	}
	return CollateralCollateralized
}

func (v Vault) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, VaultSize)
	buf = append(buf, v.Owner[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, v.SkinID)
	buf = binary.LittleEndian.AppendUint64(buf, v.LoanAmount)
	buf = binary.LittleEndian.AppendUint64(buf, v.TotalDeposits)
	return buf, nil
}

func (v *Vault) UnmarshalBinary(data []byte) error {
	if len(data) != VaultSize {
		return fmt.Errorf("%w: vault record is %d bytes, want %d", ErrMalformedRecord, len(data), VaultSize)
	}
	copy(v.Owner[:], data[:IdentitySize])
	off := IdentitySize
	v.SkinID = binary.LittleEndian.Uint64(data[off:])
	v.LoanAmount = binary.LittleEndian.Uint64(data[off+8:])
	v.TotalDeposits = binary.LittleEndian.Uint64(data[off+16:])
	return nil
}
