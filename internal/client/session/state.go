package session

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/paychain/internal/client/models"
)

type Phase string

const (
	PhaseUnstarted       Phase = "unstarted"
	PhaseInitializing    Phase = "initializing"
	PhaseAuthenticated   Phase = "authenticated"
	PhaseUnauthenticated Phase = "unauthenticated"
)

// State is a snapshot of the session. Snapshots are deep copies; mutating
// one has no effect on the Store.
type State struct {
	IsAuthenticated bool
	IsInitialized   bool
	IsLoading       bool
	User            *models.User
	Error           string

	Transactions []models.Transaction
	// Offline is set when Transactions came from the local cache because the
	// backend was unreachable.
	Offline bool
}

func (s State) Phase() Phase {
	switch {
	case s.IsAuthenticated:
		return PhaseAuthenticated
	case !s.IsInitialized && s.IsLoading:
		return PhaseInitializing
	case !s.IsInitialized:
		return PhaseUnstarted
	default:
		return PhaseUnauthenticated
	}
}

func (s State) clone() State {
	c := s
	c.User = s.User.Clone()
	c.Transactions = models.CloneTransactions(s.Transactions)
	return c
}

// Slice is the persisted part of State.
type Slice struct {
	IsAuthenticated bool         `json:"isAuthenticated"`
	User            *models.User `json:"user"`
}

// Persist projects the durable slice out of s.
func Persist(s State) Slice {
	return Slice{IsAuthenticated: s.IsAuthenticated && s.User != nil, User: s.User.Clone()}
}

// Restore builds the pre-initialize state from a persisted slice. A slice
// claiming authentication without a user is treated as signed out.
func Restore(sl Slice) State {
	st := State{User: sl.User.Clone()}
	st.IsAuthenticated = sl.IsAuthenticated && st.User != nil
	return st
}

// envelope matches the {"state": ..., "version": N} layout of the stored value.
type envelope struct {
	State   Slice `json:"state"`
	Version int   `json:"version"`
}

const sliceVersion = 0

func EncodeSlice(sl Slice) ([]byte, error) {
	return json.Marshal(envelope{State: sl, Version: sliceVersion})
}

func DecodeSlice(data []byte) (Slice, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Slice{}, fmt.Errorf("decode session slice: %w", err)
	}
	if env.Version != sliceVersion {
		return Slice{}, fmt.Errorf("decode session slice: unsupported version %d", env.Version)
	}
	return env.State, nil
}
