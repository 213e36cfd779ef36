package pairing

import (
	"fmt"
	"sort"

	"github.com/nguyentantai21042004/slide-flow/internal/logicalid"
	"github.com/nguyentantai21042004/slide-flow/internal/models"
)

// Result is the outcome of one pairing run. Unmatched lists hold the
// one-sided ids in id order, followed by files the scheme could not read
// (empty LogicalID) in name order.
type Result struct {
	Pairs           []models.Pair       `json:"pairs"`
	UnmatchedImages []models.MediaAsset `json:"unmatched_images"`
	UnmatchedAudio  []models.MediaAsset `json:"unmatched_audio"`
}

// IDs returns the pair ids in order.
func (r Result) IDs() []string {
	ids := make([]string, 0, len(r.Pairs))
	for _, p := range r.Pairs {
		ids = append(ids, p.ID)
	}
	return ids
}

// Find returns the pair with the given id.
func (r Result) Find(id string) (models.Pair, bool) {
	for _, p := range r.Pairs {
		if p.ID == id {
			return p, true
		}
	}
	return models.Pair{}, false
}

// Pair matches images to audio by logical id. It has no side effects and
// its output depends only on the file names, not on the input order.
// An empty intersection is not an error; callers check len(Pairs).
func Pair(images, audios []models.MediaAsset, scheme logicalid.Scheme) (Result, error) {
	imageSide := index(images, models.KindImage, scheme)
	audioSide := index(audios, models.KindAudio, scheme)

	if collisions := append(imageSide.collisions, audioSide.collisions...); len(collisions) > 0 {
		return Result{}, &AmbiguousIDError{Collisions: collisions}
	}

	all := make([]string, 0, len(imageSide.byID)+len(audioSide.byID))
	for id := range imageSide.byID {
		all = append(all, id)
	}
	for id := range audioSide.byID {
		if _, ok := imageSide.byID[id]; !ok {
			all = append(all, id)
		}
	}
	if err := scheme.Validate(all); err != nil {
		return Result{}, fmt.Errorf("validate ids: %w", err)
	}
	sortIDs(all, scheme)

	var res Result
	for _, id := range all {
		img, hasImage := imageSide.byID[id]
		aud, hasAudio := audioSide.byID[id]
		switch {
		case hasImage && hasAudio:
			res.Pairs = append(res.Pairs, models.Pair{ID: id, Image: img, Audio: aud})
		case hasImage:
			res.UnmatchedImages = append(res.UnmatchedImages, img)
		default:
			res.UnmatchedAudio = append(res.UnmatchedAudio, aud)
		}
	}
	res.UnmatchedImages = append(res.UnmatchedImages, imageSide.unreadable...)
	res.UnmatchedAudio = append(res.UnmatchedAudio, audioSide.unreadable...)

	return res, nil
}

type side struct {
	byID       map[string]models.MediaAsset
	unreadable []models.MediaAsset
	collisions []Collision
}

func index(assets []models.MediaAsset, kind models.MediaKind, scheme logicalid.Scheme) side {
	grouped := make(map[string][]models.MediaAsset)
	var s side

	for _, a := range assets {
		a.Kind = kind
		id, ok := scheme.Extract(kind, a.Name)
		if !ok {
			a.LogicalID = ""
			s.unreadable = append(s.unreadable, a)
			continue
		}
		a.LogicalID = id
		grouped[id] = append(grouped[id], a)
	}

	s.byID = make(map[string]models.MediaAsset, len(grouped))
	for id, group := range grouped {
		if len(group) > 1 {
			files := make([]string, 0, len(group))
			for _, a := range group {
				files = append(files, a.Name)
			}
			sort.Strings(files)
			s.collisions = append(s.collisions, Collision{Kind: kind, ID: id, Files: files})
			continue
		}
		s.byID[id] = group[0]
	}

	sort.Slice(s.collisions, func(i, j int) bool {
		return scheme.Compare(s.collisions[i].ID, s.collisions[j].ID) < 0
	})
	sort.Slice(s.unreadable, func(i, j int) bool { return s.unreadable[i].Name < s.unreadable[j].Name })
	return s
}

// sortIDs orders ids by the scheme comparator, falling back to byte order
// so ids the comparator treats as equal still land deterministically.
func sortIDs(ids []string, scheme logicalid.Scheme) {
	sort.Slice(ids, func(i, j int) bool {
		if c := scheme.Compare(ids[i], ids[j]); c != 0 {
			return c < 0
		}
		return ids[i] < ids[j]
	})
}
