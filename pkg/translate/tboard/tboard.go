// Package tboard builds the nested board read-model served to clients:
// lanes in board order, each lane's cards in lane order, each card's
// checklist items with the assignee denormalized. Pure data shuffling, no
// queries and no writes.
package tboard

import (
	"time"

	"taskboard-backend/pkg/idwrap"
	"taskboard-backend/pkg/model/mboard"
	"taskboard-backend/pkg/model/mcard"
	"taskboard-backend/pkg/model/mchecklist"
	"taskboard-backend/pkg/model/mlane"
	"taskboard-backend/pkg/model/muser"
)

type Assignee struct {
	ID        idwrap.IDWrap `json:"id"`
	Name      string        `json:"name"`
	AvatarURL string        `json:"avatarUrl"`
}

type ChecklistItem struct {
	ID               idwrap.IDWrap  `json:"id"`
	CardID           idwrap.IDWrap  `json:"cardId"`
	Text             string         `json:"text"`
	Completed        bool           `json:"completed"`
	AssignedToUserID *idwrap.IDWrap `json:"assignedToUserId"`
	AssignedTo       *Assignee      `json:"assignedTo"`
}

type Card struct {
	ID          idwrap.IDWrap   `json:"id"`
	LaneID      idwrap.IDWrap   `json:"laneId"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    mcard.Priority  `json:"priority"`
	Order       int64           `json:"order"`
	Checklists  []ChecklistItem `json:"checklists"`
}

type Lane struct {
	ID      idwrap.IDWrap `json:"id"`
	BoardID idwrap.IDWrap `json:"boardId"`
	Title   string        `json:"title"`
	Order   int64         `json:"order"`
	Cards   []Card        `json:"cards"`
}

type Board struct {
	ID        idwrap.IDWrap `json:"id"`
	Name      string        `json:"name"`
	CreatedAt time.Time     `json:"createdAt"`
	Lanes     []Lane        `json:"lanes"`
}

func SerializeAssignee(user *muser.User) *Assignee {
	if user == nil {
		return nil
	}
	return &Assignee{ID: user.ID, Name: user.Name, AvatarURL: user.AvatarURL}
}

func SerializeChecklistItem(item mchecklist.ChecklistItem, assignee *muser.User) ChecklistItem {
	return ChecklistItem{
		ID:               item.ID,
		CardID:           item.CardID,
		Text:             item.Text,
		Completed:        item.Completed,
		AssignedToUserID: item.AssignedTo,
		AssignedTo:       SerializeAssignee(assignee),
	}
}

func SerializeCard(card mcard.Card) Card {
	return Card{
		ID:          card.ID,
		LaneID:      card.LaneID,
		Title:       card.Title,
		Description: card.Description,
		Priority:    card.Priority,
		Order:       card.Order,
		Checklists:  []ChecklistItem{},
	}
}

func SerializeLane(lane mlane.Lane) Lane {
	return Lane{
		ID:      lane.ID,
		BoardID: lane.BoardID,
		Title:   lane.Title,
		Order:   lane.Order,
		Cards:   []Card{},
	}
}

// Nest assembles one board aggregate. Lanes and cards are expected in their
// persisted order (the services return them sorted); users maps assignee ids
// to user rows for denormalization.
func Nest(board mboard.Board, lanes []mlane.Lane, cards []mcard.Card, items []mchecklist.ChecklistItem, users map[idwrap.IDWrap]muser.User) Board {
	itemsByCard := make(map[idwrap.IDWrap][]ChecklistItem, len(items))
	for _, item := range items {
		var assignee *muser.User
		if item.AssignedTo != nil {
			if u, ok := users[*item.AssignedTo]; ok {
				assignee = &u
			}
		}
		itemsByCard[item.CardID] = append(itemsByCard[item.CardID], SerializeChecklistItem(item, assignee))
	}

	cardsByLane := make(map[idwrap.IDWrap][]Card, len(cards))
	for _, card := range cards {
		out := SerializeCard(card)
		if nested, ok := itemsByCard[card.ID]; ok {
			out.Checklists = nested
		}
		cardsByLane[card.LaneID] = append(cardsByLane[card.LaneID], out)
	}

	out := Board{
		ID:        board.ID,
		Name:      board.Name,
		CreatedAt: board.CreatedAt,
		Lanes:     make([]Lane, 0, len(lanes)),
	}
	for _, lane := range lanes {
		nested := SerializeLane(lane)
		if cs, ok := cardsByLane[lane.ID]; ok {
			nested.Cards = cs
		}
		out.Lanes = append(out.Lanes, nested)
	}
	return out
}
