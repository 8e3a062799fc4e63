package verify

import (
	"crypto/ed25519"
	"errors"
	"testing"

	"github.com/pietgeursen/bamboo-go/entry"
	"github.com/pietgeursen/bamboo-go/publish"
)

func generateKeyPair(t *testing.T) publish.KeyPair {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	return publish.KeyPair{PublicKey: pub, PrivateKey: priv}
}

func publishEntry(t *testing.T, kp publish.KeyPair, payload []byte, isEndOfFeed bool, prevSeq *uint64, lipmaaBytes, backlinkBytes []byte) []byte {
	t.Helper()
	buf := make([]byte, entry.MaxEntrySize)
	n, err := publish.Publish(buf, kp, 0, payload, isEndOfFeed, prevSeq, lipmaaBytes, backlinkBytes)
	if err != nil {
		t.Fatal(err)
	}
	return buf[:n]
}

func TestVerifyFirstEntry(t *testing.T) {
	kp := generateKeyPair(t)
	payload := []byte("hello")
	e := publishEntry(t, kp, payload, false, nil, nil, nil)

	if err := Verify(e, payload, nil, nil); err != nil {
		t.Fatal(err)
	}
}

func TestVerifyChainOfThreeEntries(t *testing.T) {
	kp := generateKeyPair(t)

	p1 := []byte("one")
	e1 := publishEntry(t, kp, p1, false, nil, nil, nil)
	seq1 := uint64(1)

	p2 := []byte("two")
	e2 := publishEntry(t, kp, p2, false, &seq1, e1, e1)
	seq2 := uint64(2)

	p3 := []byte("three")
	e3 := publishEntry(t, kp, p3, false, &seq2, e1, e2)

	if err := Verify(e1, p1, nil, nil); err != nil {
		t.Fatalf("entry 1: %v", err)
	}
	if err := Verify(e2, p2, e1, e1); err != nil {
		t.Fatalf("entry 2: %v", err)
	}
	if err := Verify(e3, p3, e1, e2); err != nil {
		t.Fatalf("entry 3: %v", err)
	}
}

func TestVerifyDetectsTamperedPayload(t *testing.T) {
	kp := generateKeyPair(t)
	e := publishEntry(t, kp, []byte("hello"), false, nil, nil, nil)

	err := Verify(e, []byte("goodbye"), nil, nil)
	if !errors.Is(err, ErrPayloadHashDidNotMatch) {
		t.Fatalf("err = %v, want ErrPayloadHashDidNotMatch", err)
	}
}

func TestVerifyAcceptsMissingLinksDuringPartialReplication(t *testing.T) {
	kp := generateKeyPair(t)
	e1 := publishEntry(t, kp, []byte("one"), false, nil, nil, nil)
	seq1 := uint64(1)
	e2 := publishEntry(t, kp, []byte("two"), false, &seq1, e1, e1)

	// Verifying e2 without holding e1 at all must still succeed: this is
	// the partial-replication case.
	if err := Verify(e2, nil, nil, nil); err != nil {
		t.Fatal(err)
	}
}

func TestVerifyDetectsBacklinkHashMismatch(t *testing.T) {
	kp := generateKeyPair(t)
	e1 := publishEntry(t, kp, []byte("one"), false, nil, nil, nil)
	seq1 := uint64(1)
	e2 := publishEntry(t, kp, []byte("two"), false, &seq1, e1, e1)

	// Same author and log_id as the real entry one, so only the hash differs.
	wrongBacklink := publishEntry(t, kp, []byte("not the real entry one"), false, nil, nil, nil)

	err := Verify(e2, nil, wrongBacklink, wrongBacklink)
	if !errors.Is(err, ErrBacklinkHashDoesNotMatch) {
		t.Fatalf("err = %v, want ErrBacklinkHashDoesNotMatch", err)
	}
}

func TestVerifyDetectsInvalidSignature(t *testing.T) {
	kp := generateKeyPair(t)
	e := publishEntry(t, kp, []byte("hello"), false, nil, nil, nil)
	tampered := append([]byte(nil), e...)
	tampered[len(tampered)-1] ^= 0xFF

	if err := Verify(tampered, nil, nil, nil); err == nil {
		t.Fatal("expected an error for a tampered signature byte")
	}
}

func TestBatchVerifiesChain(t *testing.T) {
	kp := generateKeyPair(t)

	const n = 10
	items := make([]Item, n)
	var prevSeq *uint64
	var lastTwo [2][]byte

	for i := 0; i < n; i++ {
		var lipmaaBytes, backlinkBytes []byte
		seq := uint64(i + 1)
		if seq > 1 {
			backlinkBytes = lastTwo[(i-1)%2]
			target := lipmaaOf(seq)
			if target == seq-1 {
				lipmaaBytes = backlinkBytes
			} else {
				lipmaaBytes = items[target-1].EntryBytes
			}
		}
		payload := []byte{byte(i)}
		buf := make([]byte, entry.MaxEntrySize)
		written, err := publish.Publish(buf, kp, 0, payload, false, prevSeq, lipmaaBytes, backlinkBytes)
		if err != nil {
			t.Fatalf("entry %d: %v", i+1, err)
		}
		items[i] = Item{EntryBytes: buf[:written], PayloadBytes: payload}
		lastTwo[i%2] = buf[:written]
		prevSeq = &seq
	}

	if err := Batch(items); err != nil {
		t.Fatal(err)
	}
}

func TestBatchDetectsTamperedEntry(t *testing.T) {
	kp := generateKeyPair(t)

	p1 := []byte("one")
	e1 := publishEntry(t, kp, p1, false, nil, nil, nil)
	seq1 := uint64(1)
	p2 := []byte("two")
	e2 := publishEntry(t, kp, p2, false, &seq1, e1, e1)

	tampered := append([]byte(nil), e2...)
	tampered[len(tampered)-1] ^= 0xFF

	items := []Item{
		{EntryBytes: e1, PayloadBytes: p1},
		{EntryBytes: tampered, PayloadBytes: p2},
	}
	if err := Batch(items); err == nil {
		t.Fatal("expected batch to reject a tampered entry")
	}
}

// lipmaaOf mirrors lipmaa.Lipmaa without importing the package twice in
// the test; kept local and tiny to build a realistic chain fixture.
func lipmaaOf(seq uint64) uint64 {
	if seq <= 1 {
		return 1
	}
	blockStart, blockSize := uint64(1), uint64(1)
	for blockStart+blockSize <= seq {
		blockStart += blockSize
		blockSize *= 3
	}
	p := seq - blockStart
	subSize := blockSize / 3
	localP := p % subSize
	if localP == 0 {
		return blockStart - 1
	}
	subIndex := p / subSize
	return blockStart + subIndex*subSize + lipmaaOf(localP+1) - 1
}
