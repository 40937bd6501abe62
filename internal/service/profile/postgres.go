package profile

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	postgresBackend = "postgres"

	// uniqueViolation is the Postgres SQLSTATE for unique constraint failures.
	uniqueViolation = "23505"
)

// profileRecord is the gorm model for the profiles table. Both username and
// profile_key carry unique indexes; they are the authority for uniqueness.
type profileRecord struct {
	ID           uint      `gorm:"primaryKey"`
	ProfileKey   string    `gorm:"column:profile_key;size:255;not null;uniqueIndex:uq_profiles_profile_key"`
	Username     string    `gorm:"column:username;size:255;not null;uniqueIndex:uq_profiles_username"`
	Name         string    `gorm:"column:name"`
	JobTitle     string    `gorm:"column:job_title"`
	ProfileImage string    `gorm:"column:profile_image"`
	HeaderImage  string    `gorm:"column:header_image"`
	Phone        string    `gorm:"column:phone"`
	Email        string    `gorm:"column:email"`
	IsVerified   bool      `gorm:"column:is_verified;not null;default:false"`
	Website      string    `gorm:"column:social_website"`
	Instagram    string    `gorm:"column:social_instagram"`
	Facebook     string    `gorm:"column:social_facebook"`
	Telegram     string    `gorm:"column:social_telegram"`
	TikTok       string    `gorm:"column:social_tiktok"`
	YouTube      string    `gorm:"column:social_youtube"`
	WhatsApp     string    `gorm:"column:social_whatsapp"`
	Maps         string    `gorm:"column:social_maps"`
	Snapchat     string    `gorm:"column:social_snapchat"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (profileRecord) TableName() string { return "profiles" }

func (r *profileRecord) assign(key string, f Fields) {
	r.ProfileKey = key
	r.Username = f.Username
	r.Name = f.Name
	r.JobTitle = f.JobTitle
	r.ProfileImage = f.ProfileImage
	r.HeaderImage = f.HeaderImage
	r.Phone = f.Phone
	r.Email = f.Email
	r.IsVerified = f.IsVerified
	r.Website = f.SocialLinks.Website
	r.Instagram = f.SocialLinks.Instagram
	r.Facebook = f.SocialLinks.Facebook
	r.Telegram = f.SocialLinks.Telegram
	r.TikTok = f.SocialLinks.TikTok
	r.YouTube = f.SocialLinks.YouTube
	r.WhatsApp = f.SocialLinks.WhatsApp
	r.Maps = f.SocialLinks.Maps
	r.Snapchat = f.SocialLinks.Snapchat
}

func (r *profileRecord) toProfile() *Profile {
	return &Profile{
		Key:          r.ProfileKey,
		Username:     r.Username,
		Name:         r.Name,
		JobTitle:     r.JobTitle,
		ProfileImage: r.ProfileImage,
		HeaderImage:  r.HeaderImage,
		Phone:        r.Phone,
		Email:        r.Email,
		IsVerified:   r.IsVerified,
		SocialLinks: SocialLinks{
			Website:   r.Website,
			Instagram: r.Instagram,
			Facebook:  r.Facebook,
			Telegram:  r.Telegram,
			TikTok:    r.TikTok,
			YouTube:   r.YouTube,
			WhatsApp:  r.WhatsApp,
			Maps:      r.Maps,
			Snapchat:  r.Snapchat,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// PostgresStore implements Service on Postgres through gorm.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore creates a new Postgres-backed store.
func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// AutoMigrate creates the profiles table and its unique indexes if missing.
func (s *PostgresStore) AutoMigrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&profileRecord{})
}

// Create inserts a new profile. The existence check only saves a round trip
// on obvious duplicates; a concurrent insert that slips past it is rejected
// by the unique index and reported as ErrAlreadyExists.
func (s *PostgresStore) Create(ctx context.Context, params CreateParams) (*Profile, error) {
	fields, key, err := prepare(params)
	if err != nil {
		audit(ctx, postgresBackend, "create", key, err)
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&profileRecord{}).
		Where("profile_key = ? OR username = ?", key, fields.Username).
		Count(&count).Error; err != nil {
		audit(ctx, postgresBackend, "create", key, err)
		return nil, err
	}
	if count > 0 {
		audit(ctx, postgresBackend, "create", key, ErrAlreadyExists)
		return nil, ErrAlreadyExists
	}

	now := storedNow()
	rec := profileRecord{CreatedAt: now, UpdatedAt: now}
	rec.assign(key, fields)
	if err := db.Create(&rec).Error; err != nil {
		err = translateWriteError(err)
		audit(ctx, postgresBackend, "create", key, err)
		return nil, err
	}

	audit(ctx, postgresBackend, "create", key, nil)
	return rec.toProfile(), nil
}

// List returns all profiles ordered by profile key.
func (s *PostgresStore) List(ctx context.Context) ([]*Profile, error) {
	var recs []profileRecord
	if err := s.db.WithContext(ctx).Order("profile_key").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]*Profile, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toProfile())
	}
	return out, nil
}

// GetByUsername retrieves the profile whose stored username equals username.
func (s *PostgresStore) GetByUsername(ctx context.Context, username string) (*Profile, error) {
	return s.first(ctx, "username = ?", username)
}

// GetByKey retrieves a profile by profile key.
func (s *PostgresStore) GetByKey(ctx context.Context, key string) (*Profile, error) {
	return s.first(ctx, "profile_key = ?", key)
}

func (s *PostgresStore) first(ctx context.Context, query string, arg string) (*Profile, error) {
	var rec profileRecord
	if err := s.db.WithContext(ctx).Where(query, arg).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec.toProfile(), nil
}

// Update replaces every field of the profile stored under key. A missing
// profile is reported before the replacement is validated.
func (s *PostgresStore) Update(ctx context.Context, key string, params UpdateParams) (*Profile, error) {
	var rec profileRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("profile_key = ?", key).First(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		fields, newKey, err := prepare(params)
		if err != nil {
			return err
		}
		rec.assign(newKey, fields)
		rec.UpdatedAt = storedNow()
		// Select("*") writes zero values too, which full replacement needs.
		return tx.Model(&rec).Select("*").Omit("id", "created_at").Updates(&rec).Error
	})
	if err != nil {
		err = translateWriteError(err)
		audit(ctx, postgresBackend, "update", key, err)
		return nil, err
	}

	audit(ctx, postgresBackend, "update", key, nil)
	return rec.toProfile(), nil
}

// Delete removes the profile stored under key.
func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	res := s.db.WithContext(ctx).Where("profile_key = ?", key).Delete(&profileRecord{})
	err := res.Error
	if err == nil && res.RowsAffected == 0 {
		err = ErrNotFound
	}
	audit(ctx, postgresBackend, "delete", key, err)
	return err
}

// translateWriteError maps unique violations onto ErrAlreadyExists.
func translateWriteError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyExists
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrAlreadyExists
	}
	return err
}

// Compile-time interface check
var _ Service = (*PostgresStore)(nil)
