package domain

import "sort"

// BoardView is the read model of a room's board.
type BoardView struct {
	RoomID       uint         `json:"roomId"`
	BucketOrder  Sequence     `json:"bucketOrder"`
	OrderVersion uint         `json:"bucketOrderVersion"`
	Buckets      []BucketView `json:"buckets"`
}

// BucketView is a bucket with its cards in display order.
type BucketView struct {
	Bucket
	Cards []CardView `json:"cards"`
}

// CardView is a card with its todos.
type CardView struct {
	Card
	Todos []Todo `json:"todos"`
}

// AssembleBoard arranges stored records into display order.
//
// Buckets follow the room's bucket order; buckets missing from it follow in
// creation order. Cards follow each bucket's card order; cards claiming the
// bucket but missing from its order are appended in creation order so an
// inconsistency shows up instead of hiding a card. Ids that reference no
// record are skipped.
func AssembleBoard(roomID uint, order *BucketOrder, buckets []Bucket, cards []Card, todos []Todo) *BoardView {
	view := &BoardView{RoomID: roomID, BucketOrder: Sequence{}, Buckets: []BucketView{}}
	if order != nil && order.Order != nil {
		view.BucketOrder = order.Sequence().Clone()
	}
	if order != nil {
		view.OrderVersion = order.Version
	}

	todosByCard := make(map[string][]Todo)
	for _, t := range todos {
		todosByCard[t.CardID] = append(todosByCard[t.CardID], t)
	}
	for id := range todosByCard {
		list := todosByCard[id]
		sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	}

	cardsByBucket := make(map[string][]Card)
	for _, c := range cards {
		cardsByBucket[c.BucketID] = append(cardsByBucket[c.BucketID], c)
	}

	bucketByID := make(map[string]Bucket, len(buckets))
	for _, b := range buckets {
		bucketByID[b.ID] = b
	}
	ordered := make([]Bucket, 0, len(buckets))
	placed := make(map[string]bool, len(buckets))
	for _, id := range view.BucketOrder {
		if b, ok := bucketByID[id]; ok && !placed[id] {
			ordered = append(ordered, b)
			placed[id] = true
		}
	}
	rest := make([]Bucket, 0)
	for _, b := range buckets {
		if !placed[b.ID] {
			rest = append(rest, b)
		}
	}
	sort.SliceStable(rest, func(i, j int) bool { return rest[i].CreatedAt.Before(rest[j].CreatedAt) })
	ordered = append(ordered, rest...)

	for _, b := range ordered {
		bv := BucketView{Bucket: b, Cards: []CardView{}}
		own := cardsByBucket[b.ID]
		cardByID := make(map[string]Card, len(own))
		for _, c := range own {
			cardByID[c.ID] = c
		}
		seen := make(map[string]bool, len(own))
		for _, id := range b.Order() {
			if c, ok := cardByID[id]; ok && !seen[id] {
				bv.Cards = append(bv.Cards, cardView(c, todosByCard))
				seen[id] = true
			}
		}
		stray := make([]Card, 0)
		for _, c := range own {
			if !seen[c.ID] {
				stray = append(stray, c)
			}
		}
		sort.SliceStable(stray, func(i, j int) bool { return stray[i].CreatedAt.Before(stray[j].CreatedAt) })
		for _, c := range stray {
			bv.Cards = append(bv.Cards, cardView(c, todosByCard))
		}
		view.Buckets = append(view.Buckets, bv)
	}
	return view
}

func cardView(c Card, todosByCard map[string][]Todo) CardView {
	todos := todosByCard[c.ID]
	if todos == nil {
		todos = []Todo{}
	}
	return CardView{Card: c, Todos: todos}
}
