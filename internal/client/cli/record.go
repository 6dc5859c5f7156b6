package cli

import (
	"context"
	"os"

	"github.com/healthdot/registry/internal/cryptox"
	"github.com/healthdot/registry/internal/netx"
)

// readFile is a test seam for os.ReadFile.
var readFile = os.ReadFile

// writeFile is a test seam for os.WriteFile.
var writeFile = os.WriteFile

// AddRecord uploads a patient record payload: asks the server for a record
// row plus a presigned PUT URL, pushes the file there, then finalizes the
// record with the payload's keccak-256 digest. The printed record id is the
// value to use as a token's data reference when minting.
func (a *App) AddRecord(ctx context.Context) error {
	patient, err := GetSimpleText(a.reader, "Patient account", os.Stdout)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}

	kind, err := GetSimpleText(a.reader, "Kind: biodata or clinical_notes", os.Stdout)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}

	name, err := GetSimpleText(a.reader, "Name (optional)", os.Stdout)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}

	path, err := GetSimpleText(a.reader, "File path", os.Stdout)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}

	payload, err := readFile(path)
	if err != nil {
		printlnFn("Cannot read file:", err)
		return err
	}

	rec, putURL, err := a.api.CreateRecord(ctx, patient, kind, name)
	if err != nil {
		printlnFn("Record creation failed:", err)
		return err
	}

	if err := netx.UploadToPresignedURL(putURL, payload); err != nil {
		printlnFn("Upload failed:", err)
		return err
	}

	digest := cryptox.Keccak256Hex(payload)
	if err := a.api.FinalizeRecord(ctx, rec.ID, digest); err != nil {
		printlnFn("Finalize failed:", err)
		return err
	}

	printlnFn("Record created:", rec.ID)
	printlnFn("Digest:", digest)
	return nil
}

// GetRecord downloads a record payload through a presigned GET URL and
// verifies its digest against what the record was finalized with.
func (a *App) GetRecord(ctx context.Context) error {
	recordID, err := GetSimpleText(a.reader, "Record id", os.Stdout)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}

	path, err := GetSimpleText(a.reader, "Save to file path", os.Stdout)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}

	rec, err := a.api.Record(ctx, recordID)
	if err != nil {
		printlnFn("Record lookup failed:", err)
		return err
	}

	url, err := a.api.RecordDownloadURL(ctx, recordID)
	if err != nil {
		printlnFn("Download URL failed:", err)
		return err
	}

	payload, err := netx.DownloadFromPresignedURL(url)
	if err != nil {
		printlnFn("Download failed:", err)
		return err
	}

	if rec.DigestHex != "" && cryptox.Keccak256Hex(payload) != rec.DigestHex {
		printlnFn("Warning: payload digest does not match the finalized digest")
	}

	if err := writeFile(path, payload, 0o600); err != nil {
		printlnFn("Cannot write file:", err)
		return err
	}

	printlnFn("Saved", len(payload), "byte(s) to", path)
	return nil
}
