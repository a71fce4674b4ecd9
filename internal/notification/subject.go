package notification

import (
	"context"
	"fmt"

	"skill-staffing/internal/repository"

	"github.com/google/uuid"
)

// SubjectKind is the closed set of entities a notification can point at.
type SubjectKind string

const (
	SubjectSkill   SubjectKind = "skill"
	SubjectProject SubjectKind = "project"
	SubjectUser    SubjectKind = "user"
	SubjectClient  SubjectKind = "client"
)

func (k SubjectKind) Valid() bool {
	switch k {
	case SubjectSkill, SubjectProject, SubjectUser, SubjectClient:
		return true
	default:
		return false
	}
}

type Subject struct {
	Kind SubjectKind `json:"kind"`
	ID   uuid.UUID   `json:"id"`
}

func SkillSubject(id uuid.UUID) *Subject   { return &Subject{Kind: SubjectSkill, ID: id} }
func ProjectSubject(id uuid.UUID) *Subject { return &Subject{Kind: SubjectProject, ID: id} }
func UserSubject(id uuid.UUID) *Subject    { return &Subject{Kind: SubjectUser, ID: id} }
func ClientSubject(id uuid.UUID) *Subject  { return &Subject{Kind: SubjectClient, ID: id} }

// Reference is what a resolver knows about a subject.
type Reference struct {
	Label string
	Link  string
}

type Resolver func(ctx context.Context, id uuid.UUID) (Reference, error)

type Resolvers map[SubjectKind]Resolver

// Resolve looks up the subject's label and default link.
func (r Resolvers) Resolve(ctx context.Context, s Subject) (Reference, error) {
	if !s.Kind.Valid() {
		return Reference{}, fmt.Errorf("unknown subject kind %q", s.Kind)
	}
	fn, ok := r[s.Kind]
	if !ok {
		return Reference{}, fmt.Errorf("no resolver for subject kind %q", s.Kind)
	}
	return fn(ctx, s.ID)
}

// StoreResolvers resolves subjects against committed data.
func StoreResolvers(store repository.Store) Resolvers {
	return Resolvers{
		SubjectSkill: func(ctx context.Context, id uuid.UUID) (Reference, error) {
			s, err := store.Repos().Skills().GetByID(ctx, id)
			if err != nil {
				return Reference{}, err
			}
			return Reference{Label: s.Name, Link: "/skills/" + id.String()}, nil
		},
		SubjectProject: func(ctx context.Context, id uuid.UUID) (Reference, error) {
			p, err := store.Repos().Projects().GetByID(ctx, id)
			if err != nil {
				return Reference{}, err
			}
			return Reference{Label: p.Name, Link: "/projects/" + id.String()}, nil
		},
		SubjectUser: func(ctx context.Context, id uuid.UUID) (Reference, error) {
			u, err := store.Repos().Users().GetByID(ctx, id)
			if err != nil {
				return Reference{}, err
			}
			return Reference{Label: u.DisplayName(), Link: "/users/" + id.String()}, nil
		},
		SubjectClient: func(ctx context.Context, id uuid.UUID) (Reference, error) {
			c, err := store.Repos().Projects().GetClient(ctx, id)
			if err != nil {
				return Reference{}, err
			}
			return Reference{Label: c.Name, Link: "/clients/" + id.String()}, nil
		},
	}
}
