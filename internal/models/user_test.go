package models

import (
	"testing"
	"time"
)

func TestChangedPasswordAfterNeverChanged(t *testing.T) {
	user := User{}
	if user.ChangedPasswordAfter(time.Now()) {
		t.Fatal("expected false when password was never changed")
	}
}

func TestChangedPasswordAfterStaleToken(t *testing.T) {
	issued := time.Now().Add(-time.Hour)
	changed := time.Now().Add(-time.Minute)
	user := User{PasswordChangedAt: &changed}
	if !user.ChangedPasswordAfter(issued) {
		t.Fatal("expected token issued before password change to be stale")
	}
}

func TestChangedPasswordAfterFreshToken(t *testing.T) {
	changed := time.Now().Add(-time.Hour)
	issued := time.Now().Add(-time.Minute)
	user := User{PasswordChangedAt: &changed}
	if user.ChangedPasswordAfter(issued) {
		t.Fatal("expected token issued after password change to stay valid")
	}
}
