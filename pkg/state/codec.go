package state

import (
	"bytes"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"

	errs "github.com/matzehuels/atlaspack/pkg/errors"
)

// magic prefixes every encoded snapshot.
var magic = []byte("APKS")

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	if encMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(err)
	}
	decOpts := cbor.DecOptions{
		MaxArrayElements: 1 << 30,
		MaxMapPairs:      1 << 30,
	}
	if decMode, err = decOpts.DecMode(); err != nil {
		panic(err)
	}
}

// Encode serializes s as magic || zstd(cbor(s)).
func Encode(s *Snapshot) ([]byte, error) {
	raw, err := encMode.Marshal(s)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode snapshot")
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "create zstd encoder")
	}
	defer enc.Close()

	out := make([]byte, 0, len(magic)+len(raw)/2)
	out = append(out, magic...)
	return enc.EncodeAll(raw, out), nil
}

// Decode parses a blob written by Encode. Blobs from a newer schema version
// fail with ErrCodeUnsupportedState; anything unreadable fails with
// ErrCodeInvalidState.
func Decode(data []byte) (*Snapshot, error) {
	if !bytes.HasPrefix(data, magic) {
		return nil, errs.New(errs.ErrCodeInvalidState, "not an atlas state file")
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "create zstd decoder")
	}
	defer dec.Close()

	raw, err := dec.DecodeAll(data[len(magic):], nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidState, err, "decompress state")
	}

	var probe struct {
		Version int `cbor:"version"`
	}
	if err := decMode.Unmarshal(raw, &probe); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidState, err, "decode state header")
	}
	if probe.Version != Version {
		return nil, errs.New(errs.ErrCodeUnsupportedState, "state version %d, this build reads version %d", probe.Version, Version)
	}

	var s Snapshot
	if err := decMode.Unmarshal(raw, &s); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidState, err, "decode state")
	}
	return &s, nil
}
