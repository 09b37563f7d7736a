//go:build windows

package biscuit

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unsafe"

	"github.com/tidwall/gjson"
	"golang.org/x/sys/windows"
)

// chromiumKeysForTarget unwraps the AES-256-GCM master key stored in the
// profile's Local State file. The key is wrapped with DPAPI under the current
// user's scope; CryptUnprotectData reverses it.
func chromiumKeysForTarget(_ chromiumVendor, target BrowserTarget, _ time.Duration) chromiumKeySet {
	if target.UserDataDir == "" {
		return chromiumKeySet{
			err:       fmt.Errorf("%w: Local State path unavailable", ErrKeyUnavailable),
			unprotect: dpapiUnprotect,
		}
	}

	key, err := windowsMasterKey(target.UserDataDir)
	if err != nil {
		return chromiumKeySet{
			err:       fmt.Errorf("%w: %v", ErrKeyUnavailable, err),
			unprotect: dpapiUnprotect,
		}
	}
	return chromiumKeySet{
		gcm:       &KeyMaterial{Algorithm: KeyAES256GCM, Secret: key},
		unprotect: dpapiUnprotect,
	}
}

func windowsMasterKey(userDataDir string) ([]byte, error) {
	stateBytes, err := os.ReadFile(filepath.Join(userDataDir, "Local State"))
	if err != nil {
		return nil, err
	}

	encB64 := strings.TrimSpace(gjson.GetBytes(stateBytes, "os_crypt.encrypted_key").String())
	if encB64 == "" {
		return nil, errors.New("local state missing os_crypt.encrypted_key")
	}
	enc, err := base64.StdEncoding.DecodeString(encB64)
	if err != nil {
		return nil, err
	}
	const dpapiTag = "DPAPI"
	if !strings.HasPrefix(string(enc), dpapiTag) {
		return nil, errors.New("encrypted_key missing DPAPI prefix")
	}
	key, err := dpapiUnprotect(enc[len(dpapiTag):])
	if err != nil {
		return nil, err
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("master key not 32 bytes (got %d)", len(key))
	}
	return key, nil
}

func dpapiUnprotect(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("empty dpapi input")
	}

	var outBlob dataBlob
	if err := cryptUnprotectData(newBlob(data), &outBlob); err != nil {
		return nil, err
	}
	defer func() {
		_, _ = windows.LocalFree(windows.Handle(unsafe.Pointer(outBlob.pbData))) //nolint:gosec // Windows API requires this.
	}()
	return outBlob.bytes(), nil
}

type dataBlob struct {
	cbData uint32
	pbData *byte
}

func newBlob(d []byte) *dataBlob {
	if len(d) == 0 {
		return &dataBlob{}
	}
	return &dataBlob{pbData: &d[0], cbData: uint32(len(d))}
}

func (b *dataBlob) bytes() []byte {
	if b == nil || b.cbData == 0 || b.pbData == nil {
		return nil
	}
	out := make([]byte, b.cbData)
	copy(out, (*[1 << 30]byte)(unsafe.Pointer(b.pbData))[:b.cbData:b.cbData])
	return out
}

func cryptUnprotectData(in *dataBlob, out *dataBlob) error {
	// windows.CryptUnprotectData in x/sys is awkward for raw blobs; call proc directly.
	dll := windows.NewLazySystemDLL("Crypt32.dll")
	proc := dll.NewProc("CryptUnprotectData")
	const cryptprotectUIForbidden = 0x1
	r, _, e := proc.Call(
		uintptr(unsafe.Pointer(in)),
		0,
		0,
		0,
		0,
		cryptprotectUIForbidden,
		uintptr(unsafe.Pointer(out)),
	)
	if r == 0 {
		return e
	}
	return nil
}
