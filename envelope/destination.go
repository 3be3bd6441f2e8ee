// Copyright 2025 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package envelope

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rlp"
)

// Destination is the recipient of a transaction: either a regular 20-byte
// account address or the contract deployment sentinel. The zero value is the
// contract deployment sentinel.
//
// Destination 表示交易的接收方：普通的 20 字节地址，或表示合约创建的哨兵值。
// 零值即为合约创建。
type Destination struct {
	addr   common.Address
	normal bool
}

// NewDestination returns a destination for a regular account address.
func NewDestination(addr common.Address) Destination {
	return Destination{addr: addr, normal: true}
}

// ContractDeployment returns the contract deployment sentinel.
func ContractDeployment() Destination {
	return Destination{}
}

// DestinationFromBytes interprets raw address data as found on the wire.
// Empty data is the deployment sentinel; anything other than 20 bytes is an error.
func DestinationFromBytes(b []byte) (Destination, error) {
	switch len(b) {
	case 0:
		return ContractDeployment(), nil
	case common.AddressLength:
		return NewDestination(common.BytesToAddress(b)), nil
	default:
		return Destination{}, fmt.Errorf("%w: have %d bytes", ErrDestinationSize, len(b))
	}
}

// ParseDestination parses the RPC representation of a destination. The empty
// string, "0x" and "0x0" denote contract deployment.
func ParseDestination(s string) (Destination, error) {
	switch s {
	case "", "0x", "0x0":
		return ContractDeployment(), nil
	}
	if !common.IsHexAddress(s) {
		return Destination{}, fmt.Errorf("%w: %q", ErrInvalidDestination, s)
	}
	return NewDestination(common.HexToAddress(s)), nil
}

// IsContractDeployment reports whether d is the contract deployment sentinel.
func (d Destination) IsContractDeployment() bool { return !d.normal }

// Address returns the account address. The boolean is false for the
// deployment sentinel.
func (d Destination) Address() (common.Address, bool) {
	return d.addr, d.normal
}

// Bytes returns the address data as it is placed on the wire: 20 bytes for a
// regular address, empty for the deployment sentinel.
func (d Destination) Bytes() []byte {
	if !d.normal {
		return []byte{}
	}
	return common.CopyBytes(d.addr[:])
}

// Pointer returns the destination in go-ethereum's convention, where nil
// means contract creation.
func (d Destination) Pointer() *common.Address {
	if !d.normal {
		return nil
	}
	addr := d.addr
	return &addr
}

// Hex returns the lowercase hex form of the address, or "0x" for deployment.
func (d Destination) Hex() string {
	return hexutil.Encode(d.Bytes())
}

func (d Destination) String() string {
	if !d.normal {
		return "contract-deployment"
	}
	return d.Hex()
}

// EncodeRLP implements rlp.Encoder.
func (d Destination) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, d.Bytes())
}

// MarshalText implements encoding.TextMarshaler.
func (d Destination) MarshalText() ([]byte, error) {
	return []byte(d.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Destination) UnmarshalText(input []byte) error {
	dst, err := ParseDestination(string(input))
	if err != nil {
		return err
	}
	*d = dst
	return nil
}
