package game

import "strings"

type User struct {
	Name  string `json:"name"`
	Image string `json:"image"`
	Color string `json:"color"`
}

// Player is a roster entry. Copies handed out by Game never carry the credential verifier.
type Player struct {
	ID        PlayerID
	User      User
	Role      Role
	Alive     bool
	Connected bool

	verifier []byte
}

func newPlayer(u User, verifier []byte) *Player {
	u.Name = strings.TrimSpace(u.Name)
	return &Player{
		ID:        playerIDFor(u),
		User:      u,
		Alive:     true,
		Connected: true,
		verifier:  verifier,
	}
}

func playerIDFor(u User) PlayerID {
	return strings.TrimSpace(u.Name)
}

func (p *Player) public() Player {
	return Player{
		ID:        p.ID,
		User:      p.User,
		Role:      p.Role,
		Alive:     p.Alive,
		Connected: p.Connected,
	}
}

func (p *Player) kill() { p.Alive = false }
