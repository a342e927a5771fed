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

package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dreadnode/tensor-man/cmd/tensor-man/cli/options"
	"github.com/dreadnode/tensor-man/pkg/keys"
	"github.com/dreadnode/tensor-man/pkg/signing"
	"github.com/dreadnode/tensor-man/pkg/utils"
	"github.com/dreadnode/tensor-man/pkg/verify"
)

// Sign builds the sign subcommand.
func Sign() *cobra.Command {
	o := &options.SignOptions{}

	cmd := &cobra.Command{
		Use:   "sign PATH",
		Short: "Sign a model artifact with an Ed25519 private key.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Validate(); err != nil {
				return err
			}
			if err := utils.ValidatePathExists("path", args[0]); err != nil {
				return err
			}

			key, err := keys.LoadPrivateKey(o.KeyPath)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), ro.Timeout)
			defer cancel()

			m, sigPath, err := signing.Sign(ctx, args[0], key, signing.Options{
				HashAlgorithm: o.HashAlgorithm,
				Workers:       ro.Workers,
				SignaturePath: o.Output,
				Logger:        ro.NewLogger(),
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Signed %d file(s)\n", len(m.Files))
			fmt.Fprintf(out, "Signature: %s\n", m.Signature)
			fmt.Fprintf(out, "Manifest written to %s\n", sigPath)
			return nil
		},
	}
	o.AddFlags(cmd)
	return cmd
}

// Verify builds the verify subcommand.
func Verify() *cobra.Command {
	o := &options.VerifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify PATH",
		Short: "Verify a model artifact against its signature.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Validate(); err != nil {
				return err
			}
			if err := utils.ValidatePathExists("path", args[0]); err != nil {
				return err
			}

			pub, err := keys.LoadPublicKey(o.KeyPath)
			if err != nil {
				return err
			}

			sigPath := o.Signature
			if sigPath == "" {
				sigPath = signing.SignaturePathFor(args[0])
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), ro.Timeout)
			defer cancel()

			result, err := verify.Verify(ctx, args[0], sigPath, pub, verify.Options{
				Workers: ro.Workers,
				Logger:  ro.NewLogger(),
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.OK() {
				fmt.Fprintln(out, color.GreenString("Signature is valid."))
				return nil
			}

			for _, p := range result.MissingFiles {
				fmt.Fprintln(out, color.RedString("missing file: %s", p))
			}
			for _, p := range result.ExtraFiles {
				fmt.Fprintln(out, color.RedString("unsigned file: %s", p))
			}
			for _, m := range result.Mismatches {
				fmt.Fprintln(out, color.RedString("%s", m))
			}
			if !result.FingerprintMatches {
				fmt.Fprintln(out, color.YellowString("public key does not match the manifest fingerprint"))
			}
			if !result.SignatureValid {
				fmt.Fprintln(out, color.RedString("signature does not verify"))
			}
			return fmt.Errorf("verification failed")
		},
	}
	o.AddFlags(cmd)
	return cmd
}

// CreateKey builds the create-key subcommand.
func CreateKey() *cobra.Command {
	o := &options.CreateKeyOptions{}

	cmd := &cobra.Command{
		Use:   "create-key",
		Short: "Generate a new Ed25519 keypair.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pub, priv, err := keys.Generate()
			if err != nil {
				return err
			}
			if err := keys.SavePrivateKey(o.PrivateKeyPath, priv); err != nil {
				return err
			}
			if err := keys.SavePublicKey(o.PublicKeyPath, pub); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Private key written to %s\n", o.PrivateKeyPath)
			fmt.Fprintf(out, "Public key written to %s\n", o.PublicKeyPath)
			fmt.Fprintf(out, "Fingerprint: %s\n", keys.Fingerprint(pub))
			return nil
		},
	}
	o.AddFlags(cmd)
	return cmd
}
