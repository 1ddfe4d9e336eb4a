package services

import (
	"testing"
	"time"
)

func TestOTPGenerateAndVerify(t *testing.T) {
	store := &OTPStore{}

	code, err := store.Generate("+911234567890")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("code = %q, want 6 digits", code)
	}
	if err := store.Verify("+911234567890", code); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestOTPVerify_ConsumedOnSuccess(t *testing.T) {
	store := &OTPStore{}
	code, err := store.Generate("+911234567890")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := store.Verify("+911234567890", code); err != nil {
		t.Fatalf("first verify: %v", err)
	}
	if err := store.Verify("+911234567890", code); err != ErrOTPInvalid {
		t.Fatalf("replayed code: err = %v, want ErrOTPInvalid", err)
	}
}

func TestOTPVerify_WrongCode(t *testing.T) {
	store := &OTPStore{}
	if _, err := store.Generate("+911234567890"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := store.Verify("+911234567890", "000000"); err != ErrOTPInvalid {
		t.Fatalf("err = %v, want ErrOTPInvalid", err)
	}
	if err := store.Verify("+919999999999", "123456"); err != ErrOTPInvalid {
		t.Fatalf("unknown phone: err = %v, want ErrOTPInvalid", err)
	}
}

func TestOTPVerify_Expired(t *testing.T) {
	store := &OTPStore{TTL: time.Nanosecond}
	code, err := store.Generate("+911234567890")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if err := store.Verify("+911234567890", code); err != ErrOTPExpired {
		t.Fatalf("err = %v, want ErrOTPExpired", err)
	}
	// An expired code is also consumed.
	if err := store.Verify("+911234567890", code); err != ErrOTPInvalid {
		t.Fatalf("retry after expiry: err = %v, want ErrOTPInvalid", err)
	}
}

func TestOTPGenerate_ReplacesPrevious(t *testing.T) {
	store := &OTPStore{}
	first, err := store.Generate("+911234567890")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, err := store.Generate("+911234567890")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if first != second {
		if err := store.Verify("+911234567890", first); err != ErrOTPInvalid {
			t.Fatalf("stale code: err = %v, want ErrOTPInvalid", err)
		}
	}
	if err := store.Verify("+911234567890", second); err != nil {
		t.Fatalf("latest code: %v", err)
	}
}
