package dummydb

import (
	"sort"

	"github.com/trezcool/mazoezi/core/voicenote"
)

type voiceNoteRepository struct {
	db *voiceNoteTable
}

var _ voicenote.Repository = (*voiceNoteRepository)(nil) // interface compliance check

func NewVoiceNoteRepository(db *DB) voicenote.Repository {
	return &voiceNoteRepository{db: db.voiceNote}
}

func (repo *voiceNoteRepository) query() []voicenote.VoiceNote {
	notes := make([]voicenote.VoiceNote, 0, len(repo.db.table))
	for _, vn := range repo.db.table {
		notes = append(notes, *vn)
	}
	// newest first
	sort.SliceStable(notes, func(i, j int) bool { return notes[i].CreatedAt.After(notes[j].CreatedAt) })
	return notes
}

func (repo *voiceNoteRepository) CreateVoiceNote(vn voicenote.VoiceNote) (voicenote.VoiceNote, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[vn.ID] = &vn
	return vn, nil
}

func (repo *voiceNoteRepository) GetVoiceNoteByID(id string) (voicenote.VoiceNote, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if vn, ok := repo.db.table[id]; ok {
		return *vn, nil
	}
	return voicenote.VoiceNote{}, voicenote.ErrNotFound
}

func (repo *voiceNoteRepository) FilterVoiceNotes(filter voicenote.QueryFilter) ([]voicenote.VoiceNote, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	notes := repo.query()

	if filter.ModuleID != "" {
		var filtered []voicenote.VoiceNote
		for _, vn := range notes {
			if vn.ModuleID == filter.ModuleID {
				filtered = append(filtered, vn)
			}
		}
		notes = filtered
	}
	if notes != nil && filter.UserID != "" {
		var filtered []voicenote.VoiceNote
		for _, vn := range notes {
			if vn.UserID == filter.UserID {
				filtered = append(filtered, vn)
			}
		}
		notes = filtered
	}
	if notes != nil && filter.IsApproved != nil {
		var filtered []voicenote.VoiceNote
		for _, vn := range notes {
			if vn.IsApproved == *filter.IsApproved {
				filtered = append(filtered, vn)
			}
		}
		notes = filtered
	}

	return notes, nil
}

func (repo *voiceNoteRepository) SetVoiceNoteApproved(id string, approved bool) (voicenote.VoiceNote, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	vn, ok := repo.db.table[id]
	if !ok {
		return voicenote.VoiceNote{}, voicenote.ErrNotFound
	}
	vn.IsApproved = approved
	return *vn, nil
}

func (repo *voiceNoteRepository) DeleteVoiceNotesByID(ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
