package lorawan

import (
	"crypto/aes"
	"encoding/binary"

	"github.com/jacobsa/crypto/cmac"
	"github.com/pkg/errors"
)

// MaxFCntGap is the default maximum allowed jump between a session's
// downlink frame counter and a newly received 16-bit counter before the
// frame is dropped as out of window.
const MaxFCntGap = 16384

// Direction tags a frame as uplink or downlink for the MIC and payload
// cryptography block layouts.
type Direction uint8

// The two frame directions.
const (
	Uplink   Direction = 0
	Downlink Direction = 1
)

// Cipher is the cryptographic capability record the frame codec depends on:
// a single AES-128 block encryption and AES-CMAC. It is the "external
// collaborator" spec.md places out of scope; AES128Cipher is the default,
// concrete implementation backing it.
type Cipher interface {
	// EncryptBlock encrypts a single 16-byte block under key.
	EncryptBlock(key AES128Key, block [16]byte) ([16]byte, error)
	// CMAC returns AES-CMAC(key, data).
	CMAC(key AES128Key, data []byte) ([16]byte, error)
}

// AES128Cipher is the default Cipher, backed by the standard library's
// AES-128 block cipher and the jacobsa/crypto CMAC implementation.
type AES128Cipher struct{}

// EncryptBlock implements Cipher.
func (AES128Cipher) EncryptBlock(key AES128Key, block [16]byte) ([16]byte, error) {
	var out [16]byte
	c, err := aes.NewCipher(key[:])
	if err != nil {
		return out, errors.Wrap(err, "lorawan: could not init AES cipher")
	}
	c.Encrypt(out[:], block[:])
	return out, nil
}

// CMAC implements Cipher.
func (AES128Cipher) CMAC(key AES128Key, data []byte) ([16]byte, error) {
	var out [16]byte
	h, err := cmac.New(key[:])
	if err != nil {
		return out, errors.Wrap(err, "lorawan: could not init CMAC")
	}
	if _, err := h.Write(data); err != nil {
		return out, errors.Wrap(err, "lorawan: CMAC write failed")
	}
	copy(out[:], h.Sum(nil))
	return out, nil
}

// micBlock is the 16-byte B0 block prefixed to a data frame before
// computing its MIC, per spec.md §4.1.
type micBlock struct {
	fb      byte
	pad1    [4]byte
	dir     byte
	devAddr DevAddr
	fcnt    [4]byte
	pad2    byte
	length  byte
}

func (b micBlock) bytes() []byte {
	out := make([]byte, 16)
	out[0] = b.fb
	// bytes [1:5] stay zero (pad1)
	out[5] = b.dir
	copy(out[6:10], b.devAddr[:])
	copy(out[10:14], b.fcnt[:])
	// out[14] stays zero (pad2)
	out[15] = b.length
	return out
}

// ComputeMIC returns the first four bytes of AES-CMAC(key, B0 || msg) for a
// data frame, per spec.md §4.1. msg must not include the trailing MIC.
func ComputeMIC(c Cipher, key AES128Key, devAddr DevAddr, fcnt uint32, dir Direction, msg []byte) (MIC, error) {
	var mic MIC

	var fcntLE [4]byte
	binary.LittleEndian.PutUint32(fcntLE[:], fcnt)

	b0 := micBlock{
		fb:      0x49,
		dir:     byte(dir),
		devAddr: devAddr,
		fcnt:    fcntLE,
		length:  byte(len(msg)),
	}

	buf := append(b0.bytes(), msg...)
	sum, err := c.CMAC(key, buf)
	if err != nil {
		return mic, err
	}
	copy(mic[:], sum[0:4])
	return mic, nil
}

// ComputeJoinMIC returns the first four bytes of AES-CMAC(key, msg) for a
// join request or join accept, computed directly over the frame without a
// B0 prefix, per spec.md §4.1.
func ComputeJoinMIC(c Cipher, key AES128Key, msg []byte) (MIC, error) {
	var mic MIC
	sum, err := c.CMAC(key, msg)
	if err != nil {
		return mic, err
	}
	copy(mic[:], sum[0:4])
	return mic, nil
}

// cryptBlock is the 16-byte A_i block used to generate the i-th keystream
// block for FRMPayload encryption, per spec.md §4.1.
type cryptBlock struct {
	fb      byte
	pad1    [4]byte
	dir     byte
	devAddr DevAddr
	fcnt    [4]byte
	pad2    byte
	index   byte
}

func (b cryptBlock) bytes() []byte {
	out := make([]byte, 16)
	out[0] = b.fb
	out[5] = b.dir
	copy(out[6:10], b.devAddr[:])
	copy(out[10:14], b.fcnt[:])
	out[15] = b.index
	return out
}

// EncryptPayload applies the AES-CTR-like keystream defined in spec.md
// §4.1 to data, in place semantics aside (a new slice is returned).
// Applying it twice with the same (key, devAddr, fcnt, dir) is the
// identity, so the same function decrypts.
func EncryptPayload(c Cipher, key AES128Key, devAddr DevAddr, fcnt uint32, dir Direction, data []byte) ([]byte, error) {
	out := make([]byte, len(data))

	var fcntLE [4]byte
	binary.LittleEndian.PutUint32(fcntLE[:], fcnt)

	nBlocks := (len(data) + 15) / 16
	for i := 0; i < nBlocks; i++ {
		a := cryptBlock{
			fb:      0x01,
			dir:     byte(dir),
			devAddr: devAddr,
			fcnt:    fcntLE,
			index:   byte(i + 1),
		}
		var block [16]byte
		copy(block[:], a.bytes())

		s, err := c.EncryptBlock(key, block)
		if err != nil {
			return nil, err
		}

		start := i * 16
		end := start + 16
		if end > len(data) {
			end = len(data)
		}
		for j := start; j < end; j++ {
			out[j] = data[j] ^ s[j-start]
		}
	}

	return out, nil
}

// DecryptJoinAccept recovers the plaintext of an encrypted join-accept
// body. The network server encrypts join-accept frames by running
// AES-decrypt; the device recovers the plaintext by running AES-encrypt
// on the ciphertext, one or two 16-byte blocks depending on whether a
// CFList is present. ct must be 16 or 32 bytes.
func DecryptJoinAccept(c Cipher, key AES128Key, ct []byte) ([]byte, error) {
	if len(ct) != 16 && len(ct) != 32 {
		return nil, errors.Errorf("lorawan: join-accept ciphertext must be 16 or 32 bytes, got %d", len(ct))
	}

	out := make([]byte, len(ct))
	for i := 0; i < len(ct)/16; i++ {
		var block [16]byte
		copy(block[:], ct[i*16:i*16+16])
		pt, err := c.EncryptBlock(key, block)
		if err != nil {
			return nil, err
		}
		copy(out[i*16:i*16+16], pt[:])
	}
	return out, nil
}

// DeriveSessionKeys derives NwkSKey and AppSKey from a join-accept's
// AppNonce and NetID and the join-request's DevNonce, per spec.md §4.1.
// NwkSKey = AES(AppKey, 0x01 || AppNonce || NetID || DevNonce || pad);
// AppSKey = AES(AppKey, 0x02 || AppNonce || NetID || DevNonce || pad).
func DeriveSessionKeys(c Cipher, appKey AES128Key, appNonce [3]byte, netID NetID, devNonce [2]byte) (nwkSKey, appSKey AES128Key, err error) {
	var buf [16]byte
	buf[0] = 0x01
	copy(buf[1:4], appNonce[:])
	copy(buf[4:7], netID[:])
	copy(buf[7:9], devNonce[:])
	// buf[9:16] stays zero padding

	nwkBlock, err := c.EncryptBlock(appKey, buf)
	if err != nil {
		return nwkSKey, appSKey, err
	}
	copy(nwkSKey[:], nwkBlock[:])

	buf[0] = 0x02
	appBlock, err := c.EncryptBlock(appKey, buf)
	if err != nil {
		return nwkSKey, appSKey, err
	}
	copy(appSKey[:], appBlock[:])

	return nwkSKey, appSKey, nil
}

// ReconstructFCnt rebuilds the full 32-bit downlink frame counter from the
// last accepted value and a newly received 16-bit wire counter, per
// spec.md §4.1. ok is false if the candidate falls outside the accepted
// window [fcntDown, fcntDown+maxGap] and the frame must be dropped.
func ReconstructFCnt(fcntDown uint32, sFCnt uint16, maxGap uint32) (candidate uint32, ok bool) {
	candidate = (fcntDown & 0xFFFF0000) | uint32(sFCnt)

	if (fcntDown&0xFFFF)+maxGap >= 0xFFFF && uint32(sFCnt) < fcntDown&0xFFFF {
		candidate += 0x10000
	}

	if candidate < fcntDown || candidate > fcntDown+maxGap {
		return 0, false
	}
	return candidate, true
}
