// Copyright 2026 The tensor-man Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package options

import (
	"github.com/spf13/cobra"

	"github.com/dreadnode/tensor-man/pkg/utils"
)

// SignOptions holds the flags of the sign command.
type SignOptions struct {
	// KeyPath locates the PEM private key.
	KeyPath string
	// Output overrides the default signature path.
	Output string
	// HashAlgorithm overrides the default content hash.
	HashAlgorithm string
}

var _ Interface = (*SignOptions)(nil)

// AddFlags registers the sign flags.
func (o *SignOptions) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.KeyPath, "key-path", "K", "",
		"path to the PEM private key to sign with")
	_ = cmd.MarkFlagRequired("key-path")
	cmd.Flags().StringVarP(&o.Output, "output", "O", "",
		"write the signature to this path instead of <artifact>.signature")
	cmd.Flags().StringVar(&o.HashAlgorithm, "hash", "",
		"content hash algorithm (default blake2b-512)")
}

// Validate checks the sign flags.
func (o *SignOptions) Validate() error {
	return utils.ValidateFileExists("--key-path", o.KeyPath)
}

// VerifyOptions holds the flags of the verify command.
type VerifyOptions struct {
	// KeyPath locates the PEM public key.
	KeyPath string
	// Signature overrides the default signature path.
	Signature string
}

var _ Interface = (*VerifyOptions)(nil)

// AddFlags registers the verify flags.
func (o *VerifyOptions) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.KeyPath, "key-path", "K", "",
		"path to the PEM public key to verify against")
	_ = cmd.MarkFlagRequired("key-path")
	cmd.Flags().StringVarP(&o.Signature, "signature", "S", "",
		"path of the signature manifest (default <artifact>.signature)")
}

// Validate checks the verify flags.
func (o *VerifyOptions) Validate() error {
	if err := utils.ValidateFileExists("--key-path", o.KeyPath); err != nil {
		return err
	}
	return utils.ValidateOptionalFile("--signature", o.Signature)
}

// CreateKeyOptions holds the flags of the create-key command.
type CreateKeyOptions struct {
	// PrivateKeyPath is where the private key PEM is written.
	PrivateKeyPath string
	// PublicKeyPath is where the public key PEM is written.
	PublicKeyPath string
}

var _ Interface = (*CreateKeyOptions)(nil)

// AddFlags registers the create-key flags.
func (o *CreateKeyOptions) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.PrivateKeyPath, "private-key", "private.pem",
		"path of the private key file to create")
	cmd.Flags().StringVar(&o.PublicKeyPath, "public-key", "public.pem",
		"path of the public key file to create")
}
