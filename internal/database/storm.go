package database

import (
	"time"

	"github.com/asdine/storm/v3"
	"github.com/asdine/storm/v3/codec/json"
	"github.com/asdine/storm/v3/q"
	"github.com/gofrs/uuid"
	"github.com/luminahq/lumina/internal/model"
	"github.com/pkg/errors"
)

type strm struct {
	db *storm.DB
}

// StormCodec is the format used to store data in the database.
var StormCodec = storm.Codec(json.Codec)

// StormInit initializes Storm database.
func StormInit(database string) error {
	db, err := storm.Open(database, StormCodec)
	if err != nil {
		return errors.Wrap(err, "could not get database connection")
	}
	defer db.Close()

	err = db.Init(&model.Asset{})
	return errors.Wrap(err, "could not init asset index")
}

// StormReIndex rebuilds the indexes of the Storm database.
func StormReIndex(database string) error {
	db, err := storm.Open(database, StormCodec)
	if err != nil {
		return errors.Wrap(err, "could not get database connection")
	}
	defer db.Close()

	err = db.ReIndex(&model.Asset{})
	return errors.Wrap(err, "could not ReIndex assets")
}

// StormOpen opens the Storm database and returns a Client.
func StormOpen(database string) (Client, error) {
	db, err := storm.Open(database, StormCodec)
	if err != nil {
		return nil, errors.Wrap(err, "could not get database connection")
	}

	return &strm{
		db: db,
	}, nil
}

func (c *strm) Save(m model.Model) error {
	t := time.Now().UTC()
	m.SetUpdatedAt(t)

	if m.GetID() == "" {
		m.SetID(uuid.Must(uuid.NewV4()).String())
		m.SetCreatedAt(t)
	}

	return errors.Wrap(c.db.Save(m), "could not save the model")
}

func (c *strm) Close() error {
	return c.db.Close()
}

func (c *strm) IsNotFound(err error) bool {
	return errors.Cause(err) == storm.ErrNotFound
}

func (c *strm) IsUnavailable(err error) bool {
	return err != nil && !c.IsNotFound(err)
}

//
// Asset
//

func (c *strm) AllAssets() ([]*model.Asset, error) {
	assets := make([]*model.Asset, 0)
	err := c.db.All(&assets)
	return assets, errors.Wrap(err, "could not get all assets")
}

func (c *strm) FindAsset(id string) (*model.Asset, error) {
	var asset model.Asset
	err := c.db.One("ID", id, &asset)
	return &asset, errors.Wrap(err, "could not find asset")
}

func (c *strm) FindAssetByKey(objectKey string) (*model.Asset, error) {
	var asset model.Asset
	err := c.db.One("ObjectKey", objectKey, &asset)
	return &asset, errors.Wrap(err, "could not find asset")
}

func (c *strm) FindAssetsByOwner(ownerID string) ([]*model.Asset, error) {
	assets := make([]*model.Asset, 0)
	err := c.db.Select(q.Eq("OwnerID", ownerID)).OrderBy("CreatedAt").Find(&assets)
	if c.IsNotFound(err) {
		return assets, nil
	}
	return assets, errors.Wrap(err, "could not get assets by owner_id")
}
