package dummydb

import (
	"sync"

	"github.com/trezcool/mazoezi/core/badge"
	"github.com/trezcool/mazoezi/core/content"
	"github.com/trezcool/mazoezi/core/progress"
	"github.com/trezcool/mazoezi/core/user"
	"github.com/trezcool/mazoezi/core/voicenote"
)

type (
	DB struct {
		user      *userTable
		module    *moduleTable
		deck      *deckTable
		badge     *badgeTable
		progress  *progressTable
		voiceNote *voiceNoteTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	moduleTable struct {
		sync.RWMutex
		table map[string]*content.Module
	}

	deckTable struct {
		sync.RWMutex
		table map[string]*content.Deck
	}

	badgeTable struct {
		sync.RWMutex
		table map[string]*badge.Badge
		seq   int // creation order
		order map[string]int
	}

	progressTable struct {
		sync.RWMutex
		table map[string]*progress.UserProgress
	}

	voiceNoteTable struct {
		sync.RWMutex
		table map[string]*voicenote.VoiceNote
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:      &userTable{table: make(map[string]*user.User)},
		module:    &moduleTable{table: make(map[string]*content.Module)},
		deck:      &deckTable{table: make(map[string]*content.Deck)},
		badge:     &badgeTable{table: make(map[string]*badge.Badge), order: make(map[string]int)},
		progress:  &progressTable{table: make(map[string]*progress.UserProgress)},
		voiceNote: &voiceNoteTable{table: make(map[string]*voicenote.VoiceNote)},
	}
	return db, nil
}
