package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/mjwhitta/cli"

	"github.com/mellowCS/SMB-Fuzzer/internal/encoding"
	"github.com/mellowCS/SMB-Fuzzer/pkg/auth"
	"github.com/mellowCS/SMB-Fuzzer/pkg/console"
	"github.com/mellowCS/SMB-Fuzzer/pkg/smb"
	"github.com/mellowCS/SMB-Fuzzer/pkg/smb/types"
)

func main() {
	var hexInput bool

	cli.Align = true
	cli.Banner = "framedump [OPTIONS] <frame>"
	cli.Info("Decodes a captured SMB2 response frame (NetBIOS prefix, header and body).")
	cli.Flag(&hexInput, "x", "hex", false, "Input is hex text instead of raw bytes")
	cli.Parse()

	if cli.NArg() != 1 {
		cli.Usage(1)
	}

	data, err := os.ReadFile(cli.Arg(0))
	if err != nil {
		console.Error("Error reading file: %v", err)
		os.Exit(1)
	}
	if hexInput {
		if data, err = decodeHex(string(data)); err != nil {
			console.Error("Invalid hex: %v", err)
			os.Exit(1)
		}
	}

	if err := dump(os.Stdout, data); err != nil {
		console.Error("Parse error: %v", err)
		os.Exit(1)
	}
}

// decodeHex accepts hex with arbitrary whitespace
func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.Join(strings.Fields(s), ""))
}

func dump(w io.Writer, frame []byte) error {
	h, body, err := types.SplitFrame(frame)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "=== HEADER ===\n")
	fmt.Fprintf(w, "Command:    %s\n", h.Command)
	fmt.Fprintf(w, "Status:     %s\n", smb.StatusName(h.Status))
	fmt.Fprintf(w, "Flags:      0x%08X (response=%t async=%t)\n", uint32(h.Flags), h.IsResponse(), h.IsAsync())
	fmt.Fprintf(w, "MessageID:  %d\n", h.MessageID)
	fmt.Fprintf(w, "Credits:    %d\n", h.CreditRequest)
	fmt.Fprintf(w, "TreeID:     0x%08X\n", h.TreeID)
	fmt.Fprintf(w, "SessionID:  0x%016X\n", h.SessionID)
	if !h.HasSMB2Magic() {
		fmt.Fprintf(w, "Warning:    protocol id %x is not SMB2\n", h.ProtocolID)
	}
	fmt.Fprintln(w)

	r, err := types.DecodeResponseBody(h, body)
	if err != nil {
		return fmt.Errorf("%s body: %w", h.Command, err)
	}

	fmt.Fprintf(w, "=== BODY ===\n")
	switch r := r.(type) {
	case *types.ErrorResponse:
		fmt.Fprintf(w, "Error data: %d bytes\n", len(r.ErrorData))
	case *types.NegotiateResponse:
		fmt.Fprintf(w, "Dialect:    %s (smb3=%t)\n", r.DialectRevision, r.IsSMB3())
		fmt.Fprintf(w, "Signing:    required=%t\n", r.RequiresSigning())
		fmt.Fprintf(w, "ServerGUID: %s\n", uuid.UUID(r.ServerGUID))
		fmt.Fprintf(w, "Caps:       0x%08X\n", uint32(r.Capabilities))
		fmt.Fprintf(w, "MaxRead:    %d\n", r.MaxReadSize)
		for i, c := range r.NegotiateContexts {
			fmt.Fprintf(w, "Context %d:  type %d, %d bytes\n", i, c.ContextType(), len(c.Data()))
		}
	case *types.SessionSetupResponse:
		fmt.Fprintf(w, "Flags:      0x%04X (guest=%t null=%t)\n", uint16(r.SessionFlags), r.IsGuest(), r.IsNull())
		fmt.Fprintf(w, "Buffer:     %d bytes\n", len(r.SecurityBuffer))
		dumpChallenge(w, r.SecurityBuffer)
	case *types.TreeConnectResponse:
		fmt.Fprintf(w, "ShareType:  %d\n", r.ShareType)
		fmt.Fprintf(w, "Access:     0x%08X\n", uint32(r.MaximalAccess))
	case *types.CreateResponse:
		if r.FileID.IsZero() {
			fmt.Fprintf(w, "FileID:     none\n")
		} else {
			fmt.Fprintf(w, "FileID:     %x\n", r.FileID.Marshal())
		}
		fmt.Fprintf(w, "EndOfFile:  %d\n", r.EndOfFile)
	case *types.QueryInfoResponse:
		fmt.Fprintf(w, "Output:     %d bytes\n", len(r.Buffer))
	default:
		fmt.Fprintf(w, "%+v\n", r)
	}
	return nil
}

func dumpChallenge(w io.Writer, blob []byte) {
	token, err := auth.UnwrapSecurityBlob(blob)
	if err != nil {
		return
	}
	ch, err := auth.ParseChallengeMessage(token)
	if err != nil {
		fmt.Fprintf(w, "NTLM:       %v\n", err)
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "=== NTLM CHALLENGE ===\n")
	fmt.Fprintf(w, "Target:     %s\n", ch.TargetNameString())
	fmt.Fprintf(w, "Flags:      0x%08X\n", ch.NegotiateFlags)
	fmt.Fprintf(w, "Challenge:  %x\n", ch.ServerChallenge)
	for _, p := range ch.AvPairs {
		switch p.ID {
		case auth.MsvAvTimestamp, auth.MsvAvFlags, auth.MsvAvSingleHost, auth.MsvAvChannelBindings:
			fmt.Fprintf(w, "AV %2d:      %x\n", p.ID, p.Value)
		default:
			fmt.Fprintf(w, "AV %2d:      %s\n", p.ID, encoding.FromUTF16LE(p.Value))
		}
	}
}
