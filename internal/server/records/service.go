// Package records manages patient record payloads: metadata rows plus
// presigned object-storage URLs for the payload bytes themselves. The
// registry never sees payload content, only the record id (used as a
// token's data reference) and the payload digest.
package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/healthdot/registry/internal/common"
	"github.com/healthdot/registry/internal/logging"
	sc "github.com/healthdot/registry/internal/server/config"
	"github.com/healthdot/registry/internal/server/models"
	"github.com/healthdot/registry/internal/server/registry"
	"github.com/healthdot/registry/internal/server/repositories/repomanager"
)

// Test seams for the AWS SDK.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// Service owns record metadata and the presigning flow.
type Service struct {
	db       *sql.DB
	rm       repomanager.RepositoryManager
	registry *registry.Service
	config   *sc.Config
	logger   logging.Logger
}

func NewService(db *sql.DB, rm repomanager.RepositoryManager, reg *registry.Service, cfg *sc.Config, logger logging.Logger) *Service {
	return &Service{
		db:       db,
		rm:       rm,
		registry: reg,
		config:   cfg,
		logger:   logger.With("module", "records"),
	}
}

// makeStorageKey allocates a date-scoped random object key.
func makeStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("records/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *Service) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

func validKind(kind string) bool {
	return kind == models.RecordKindBiodata || kind == models.RecordKindClinicalNotes
}

// CreateUpload allocates a record row plus a presigned PUT URL for its
// payload. The returned record's ID is the value to mint into a token's
// data reference.
func (s *Service) CreateUpload(ctx context.Context, caller, patient, kind, name string) (*models.PatientRecord, string, error) {
	if patient == common.ZeroAccount {
		return nil, "", common.ErrInvalidRecipient
	}
	if !validKind(kind) {
		return nil, "", fmt.Errorf("unknown record kind %q", kind)
	}

	rec := &models.PatientRecord{
		ID:         uuid.NewString(),
		Patient:    patient,
		Creator:    caller,
		Kind:       kind,
		Name:       name,
		StorageKey: makeStorageKey(),
	}

	if err := s.rm.Records(s.db).Create(ctx, rec); err != nil {
		return nil, "", err
	}

	presignClient, err := s.getPresignClient()
	if err != nil {
		return nil, "", err
	}

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &s.config.S3Bucket,
		Key:    &rec.StorageKey,
	}, s3.WithPresignExpires(s.config.PresignExpiry))
	if err != nil {
		return nil, "", err
	}

	s.logger.Info(ctx, "record upload created", "record_id", rec.ID, "patient", patient, "kind", kind)
	return rec, req.URL, nil
}

// Finalize marks the payload as uploaded and stores its digest. Only the
// record's creator or its patient may finalize.
func (s *Service) Finalize(ctx context.Context, caller, recordID, digestHex string) error {
	rec, err := s.rm.Records(s.db).Get(ctx, recordID)
	if err != nil {
		return err
	}
	if caller != rec.Creator && caller != rec.Patient {
		return common.ErrUnauthorized
	}
	return s.rm.Records(s.db).MarkFinalized(ctx, recordID, digestHex)
}

// Get returns record metadata, gated by mayAccess.
func (s *Service) Get(ctx context.Context, caller, recordID string) (*models.PatientRecord, error) {
	rec, err := s.rm.Records(s.db).Get(ctx, recordID)
	if err != nil {
		return nil, err
	}
	ok, err := s.mayAccess(ctx, caller, rec)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrUnauthorized
	}
	return rec, nil
}

// ListByPatient returns the caller's own records.
func (s *Service) ListByPatient(ctx context.Context, caller string) ([]*models.PatientRecord, error) {
	return s.rm.Records(s.db).ListByPatient(ctx, caller)
}

// DownloadURL presigns a GET for the record payload, gated by mayAccess.
func (s *Service) DownloadURL(ctx context.Context, caller, recordID string) (string, error) {
	rec, err := s.rm.Records(s.db).Get(ctx, recordID)
	if err != nil {
		return "", err
	}

	ok, err := s.mayAccess(ctx, caller, rec)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", common.ErrUnauthorized
	}

	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", err
	}

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &s.config.S3Bucket,
		Key:    &rec.StorageKey,
	}, s3.WithPresignExpires(s.config.PresignExpiry))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// mayAccess: the record's patient and creator always may; otherwise, if a
// token references this record, custody decides via the registry's
// authorization gate.
func (s *Service) mayAccess(ctx context.Context, caller string, rec *models.PatientRecord) (bool, error) {
	if caller == rec.Patient || caller == rec.Creator {
		return true, nil
	}

	t, err := s.registry.TokenByDataRef(ctx, rec.ID)
	if errors.Is(err, common.ErrTokenNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return s.registry.Authorized(ctx, caller, t.ID)
}
