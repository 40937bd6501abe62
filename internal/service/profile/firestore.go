package profile

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	profilesCollection = "profiles"
	firestoreBackend   = "firestore"
)

// firestoreSocialLinks maps to the nested social_links map.
type firestoreSocialLinks struct {
	Website   string `firestore:"website,omitempty"`
	Instagram string `firestore:"instagram,omitempty"`
	Facebook  string `firestore:"facebook,omitempty"`
	Telegram  string `firestore:"telegram,omitempty"`
	TikTok    string `firestore:"tiktok,omitempty"`
	YouTube   string `firestore:"youtube,omitempty"`
	WhatsApp  string `firestore:"whatsapp,omitempty"`
	Maps      string `firestore:"maps,omitempty"`
	Snapchat  string `firestore:"snapchat,omitempty"`
}

// firestoreProfile maps to Firestore document structure. The document ID is
// derived from profile_key by docID.
type firestoreProfile struct {
	ProfileKey   string               `firestore:"profile_key"`
	Username     string               `firestore:"username"`
	Name         string               `firestore:"name,omitempty"`
	JobTitle     string               `firestore:"job_title,omitempty"`
	ProfileImage string               `firestore:"profile_image,omitempty"`
	HeaderImage  string               `firestore:"header_image,omitempty"`
	Phone        string               `firestore:"phone,omitempty"`
	Email        string               `firestore:"email,omitempty"`
	IsVerified   bool                 `firestore:"is_verified"`
	SocialLinks  firestoreSocialLinks `firestore:"social_links"`
	CreatedAt    time.Time            `firestore:"created_at"`
	UpdatedAt    time.Time            `firestore:"updated_at"`
}

func toFirestoreProfile(key string, f Fields, createdAt, updatedAt time.Time) firestoreProfile {
	return firestoreProfile{
		ProfileKey:   key,
		Username:     f.Username,
		Name:         f.Name,
		JobTitle:     f.JobTitle,
		ProfileImage: f.ProfileImage,
		HeaderImage:  f.HeaderImage,
		Phone:        f.Phone,
		Email:        f.Email,
		IsVerified:   f.IsVerified,
		SocialLinks:  firestoreSocialLinks(f.SocialLinks),
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

func (fp firestoreProfile) toProfile() *Profile {
	return &Profile{
		Key:          fp.ProfileKey,
		Username:     fp.Username,
		Name:         fp.Name,
		JobTitle:     fp.JobTitle,
		ProfileImage: fp.ProfileImage,
		HeaderImage:  fp.HeaderImage,
		Phone:        fp.Phone,
		Email:        fp.Email,
		IsVerified:   fp.IsVerified,
		SocialLinks:  SocialLinks(fp.SocialLinks),
		CreatedAt:    fp.CreatedAt,
		UpdatedAt:    fp.UpdatedAt,
	}
}

// FirestoreStore implements Service using Firestore. Each profile key maps
// to exactly one document ID, so the document create is the uniqueness check.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

// docID maps a profile key onto a document ID. Keys can be longer than the
// 1500-byte ID limit or take the reserved __name__ form, so the ID is the
// hex SHA-256 of the key and the key itself lives in profile_key.
func docID(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

func (s *FirestoreStore) docRef(key string) *firestore.DocumentRef {
	return s.client.Collection(profilesCollection).Doc(docID(key))
}

// Create stores a new profile. Concurrent creates for the same key race on
// the document create and the loser receives ErrAlreadyExists.
func (s *FirestoreStore) Create(ctx context.Context, params CreateParams) (*Profile, error) {
	fields, key, err := prepare(params)
	if err != nil {
		audit(ctx, firestoreBackend, "create", key, err)
		return nil, err
	}

	now := storedNow()
	fp := toFirestoreProfile(key, fields, now, now)
	if _, err := s.docRef(key).Create(ctx, fp); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			err = ErrAlreadyExists
		}
		audit(ctx, firestoreBackend, "create", key, err)
		return nil, err
	}

	audit(ctx, firestoreBackend, "create", key, nil)
	return fp.toProfile(), nil
}

// List returns all profiles ordered by profile key.
func (s *FirestoreStore) List(ctx context.Context) ([]*Profile, error) {
	docs, err := s.client.Collection(profilesCollection).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}

	out := make([]*Profile, 0, len(docs))
	for _, doc := range docs {
		var fp firestoreProfile
		if err := doc.DataTo(&fp); err != nil {
			return nil, err
		}
		out = append(out, fp.toProfile())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// GetByUsername retrieves the profile whose stored username equals username.
func (s *FirestoreStore) GetByUsername(ctx context.Context, username string) (*Profile, error) {
	iter := s.client.Collection(profilesCollection).
		Where("username", "==", username).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var fp firestoreProfile
	if err := doc.DataTo(&fp); err != nil {
		return nil, err
	}
	return fp.toProfile(), nil
}

// GetByKey retrieves a profile by profile key.
func (s *FirestoreStore) GetByKey(ctx context.Context, key string) (*Profile, error) {
	doc, err := s.docRef(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var fp firestoreProfile
	if err := doc.DataTo(&fp); err != nil {
		return nil, err
	}
	return fp.toProfile(), nil
}

// Update replaces a profile using a transaction. A username change that
// derives a new key moves the document.
func (s *FirestoreStore) Update(ctx context.Context, key string, params UpdateParams) (*Profile, error) {
	oldRef := s.docRef(key)

	var result *Profile

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(oldRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrNotFound
			}
			return err
		}

		var existing firestoreProfile
		if err := doc.DataTo(&existing); err != nil {
			return err
		}

		fields, newKey, err := prepare(params)
		if err != nil {
			return err
		}
		newRef := s.docRef(newKey)

		fp := toFirestoreProfile(newKey, fields, existing.CreatedAt, storedNow())

		if newKey == key {
			if err := tx.Set(oldRef, fp); err != nil {
				return err
			}
			result = fp.toProfile()
			return nil
		}

		// All reads must happen before the first write.
		taken, err := tx.Get(newRef)
		if err == nil && taken.Exists() {
			return ErrAlreadyExists
		}
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}

		if err := tx.Create(newRef, fp); err != nil {
			return err
		}
		if err := tx.Delete(oldRef); err != nil {
			return err
		}
		result = fp.toProfile()
		return nil
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			err = ErrAlreadyExists
		}
		audit(ctx, firestoreBackend, "update", key, err)
		return nil, err
	}

	audit(ctx, firestoreBackend, "update", key, nil)
	return result, nil
}

// Delete removes a profile using a transaction to ensure it exists.
func (s *FirestoreStore) Delete(ctx context.Context, key string) error {
	docRef := s.docRef(key)

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		_, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrNotFound
			}
			return err
		}

		return tx.Delete(docRef)
	})
	audit(ctx, firestoreBackend, "delete", key, err)
	return err
}

// Compile-time interface check
var _ Service = (*FirestoreStore)(nil)
