package services

import "github.com/Ezzyro/Airtable-Test/pkg/models"

// LatestByCategory selects, per recognized category, the note with the
// greatest AddedOn. Notes outside the five categories are ignored. On equal
// timestamps the first note seen wins.
func LatestByCategory(notes []models.Note) map[models.NoteCategory]models.Note {
	latest := make(map[models.NoteCategory]models.Note, len(models.AllNoteCategories))
	for _, n := range notes {
		if !n.Category.Valid() {
			continue
		}
		current, ok := latest[n.Category]
		if !ok || n.AddedOn.After(current.AddedOn) {
			latest[n.Category] = n
		}
	}
	return latest
}
