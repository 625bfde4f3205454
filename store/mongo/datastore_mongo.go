// Copyright 2023 Northern.tech AS
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package mongo

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	mopts "go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/mendersoftware/go-lib-micro/config"
	"github.com/mendersoftware/go-lib-micro/identity"
	"github.com/mendersoftware/go-lib-micro/mongo/migrate"
	mstore "github.com/mendersoftware/go-lib-micro/store"

	dconfig "github.com/mendersoftware/devicehub/config"
	"github.com/mendersoftware/devicehub/model"
	"github.com/mendersoftware/devicehub/store"
)

const (
	// DeviceStatesCollectionName refers to the collection of per-assignment
	// device state records
	DeviceStatesCollectionName = "device_states"

	// BatchOperationsCollectionName refers to the collection of batch
	// operations
	BatchOperationsCollectionName = "batch_operations"

	// BatchElementsCollectionName refers to the collection of per-device
	// batch elements
	BatchElementsCollectionName = "batch_elements"
)

// Element and state document fields referenced by queries.
const (
	fieldAssignmentID    = "assignment_id"
	fieldLastInteraction = "last_interaction"
	fieldPresenceMissing = "presence_missing_since"
	fieldOperationToken  = "operation_token"
	fieldDeviceToken     = "device_token"
	fieldIndex           = "index"
	fieldStatus          = "status"
	fieldReason          = "reason"
	fieldProcessedTs     = "processed_ts"
)

// mongo server error code for unique index violations
const duplicateKeyErrorCode = 11000

// SetupDataStore returns the mongo data store and optionally runs migrations
func SetupDataStore(automigrate bool) (*DataStoreMongo, error) {
	ctx := context.Background()
	dbClient, err := NewClient(ctx, config.Config)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to db")
	}
	err = doMigrations(ctx, dbClient, automigrate)
	if err != nil {
		return nil, err
	}
	dataStore := NewDataStoreWithClient(dbClient, config.Config)
	return dataStore, nil
}

func doMigrations(ctx context.Context, client *mongo.Client,
	automigrate bool) error {
	db := config.Config.GetString(dconfig.SettingDbName)
	dbs, err := migrate.GetTenantDbs(ctx, client, mstore.IsTenantDb(db))
	if err != nil {
		return errors.Wrap(err, "failed to retrieve tenant DBs")
	}
	if len(dbs) == 0 {
		dbs = []string{DbName}
	}

	for _, d := range dbs {
		err := Migrate(ctx, d, DbVersion, client, automigrate)
		if err != nil {
			return errors.Wrap(err, "failed to run migrations")
		}
	}
	return nil
}

// NewClient returns a mongo client
func NewClient(ctx context.Context, c config.Reader) (*mongo.Client, error) {
	clientOptions := mopts.Client()
	mongoURL := c.GetString(dconfig.SettingMongo)
	if !strings.Contains(mongoURL, "://") {
		return nil, errors.Errorf("Invalid mongoURL %q: missing schema.",
			mongoURL)
	}
	clientOptions.ApplyURI(mongoURL)

	username := c.GetString(dconfig.SettingDbUsername)
	if username != "" {
		credentials := mopts.Credential{
			Username: c.GetString(dconfig.SettingDbUsername),
		}
		password := c.GetString(dconfig.SettingDbPassword)
		if password != "" {
			credentials.Password = password
			credentials.PasswordSet = true
		}
		clientOptions.SetAuth(credentials)
	}

	if c.GetBool(dconfig.SettingDbSSL) {
		tlsConfig := &tls.Config{}
		tlsConfig.InsecureSkipVerify = c.GetBool(dconfig.SettingDbSSLSkipVerify)
		clientOptions.SetTLSConfig(tlsConfig)
	}

	// Acknowledge writes after journal commit on the primary.
	wc := writeconcern.New(writeconcern.W(1), writeconcern.J(true))
	clientOptions.SetWriteConcern(wc)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to connect to mongo server")
	}

	if err = client.Ping(ctx, nil); err != nil {
		return nil, errors.Wrap(err, "Error reaching mongo server")
	}

	return client, nil
}

// DataStoreMongo is the data storage service
type DataStoreMongo struct {
	client *mongo.Client
	dbName string
}

// NewDataStoreWithClient initializes a DataStore object
func NewDataStoreWithClient(client *mongo.Client, c config.Reader) *DataStoreMongo {
	dbName := c.GetString(dconfig.SettingDbName)

	return &DataStoreMongo{
		client: client,
		dbName: dbName,
	}
}

// Ping verifies the connection to the database
func (db *DataStoreMongo) Ping(ctx context.Context) error {
	res := db.client.Database(db.dbName).RunCommand(ctx, bson.M{"ping": 1})
	return res.Err()
}

// ListTenants enumerates the tenant databases and returns their tenant IDs,
// the default tenant ("") included
func (db *DataStoreMongo) ListTenants(ctx context.Context) ([]string, error) {
	dbs, err := migrate.GetTenantDbs(ctx, db.client, mstore.IsTenantDb(db.dbName))
	if err != nil {
		return nil, errors.Wrap(err, "failed to enumerate tenant databases")
	}
	tenants := make([]string, 0, len(dbs)+1)
	tenants = append(tenants, "")
	for _, d := range dbs {
		tenants = append(tenants, strings.TrimPrefix(d, db.dbName+"-"))
	}
	return tenants, nil
}

func (db *DataStoreMongo) database(ctx context.Context) *mongo.Database {
	tenantID := ""
	if id := identity.FromContext(ctx); id != nil {
		tenantID = id.Tenant
	}
	return db.client.Database(mstore.DbNameForTenant(tenantID, db.dbName))
}

// GetDeviceState returns the state record for an assignment
func (db *DataStoreMongo) GetDeviceState(
	ctx context.Context,
	assignmentID uuid.UUID,
) (*model.DeviceState, error) {
	coll := db.database(ctx).Collection(DeviceStatesCollectionName)

	cur := coll.FindOne(ctx, bson.M{fieldAssignmentID: assignmentID})

	state := &model.DeviceState{}
	if err := cur.Decode(state); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return state, nil
}

// UpsertDeviceState stores the state record keyed by assignment
func (db *DataStoreMongo) UpsertDeviceState(
	ctx context.Context,
	state *model.DeviceState,
) error {
	coll := db.database(ctx).Collection(DeviceStatesCollectionName)

	replaceOpts := mopts.Replace().SetUpsert(true)
	_, err := coll.ReplaceOne(ctx,
		bson.M{fieldAssignmentID: state.AssignmentID},
		state,
		replaceOpts,
	)
	return err
}

// ListMissingCandidates returns states that have not interacted since the
// cutoff and are not flagged missing yet, oldest interaction first
func (db *DataStoreMongo) ListMissingCandidates(
	ctx context.Context,
	cutoff time.Time,
	limit int64,
) ([]model.DeviceState, error) {
	coll := db.database(ctx).Collection(DeviceStatesCollectionName)

	findOpts := mopts.Find().
		SetSort(bson.D{{Key: fieldLastInteraction, Value: 1}}).
		SetLimit(limit)
	cur, err := coll.Find(ctx, bson.M{
		fieldLastInteraction: bson.M{"$lt": cutoff},
		fieldPresenceMissing: nil,
	}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var states []model.DeviceState
	if err := cur.All(ctx, &states); err != nil {
		return nil, err
	}
	return states, nil
}

// SetPresenceMissing flags presence missing if it is not flagged already
func (db *DataStoreMongo) SetPresenceMissing(
	ctx context.Context,
	assignmentID uuid.UUID,
	when time.Time,
) (bool, error) {
	coll := db.database(ctx).Collection(DeviceStatesCollectionName)

	res, err := coll.UpdateOne(ctx,
		bson.M{
			fieldAssignmentID:    assignmentID,
			fieldPresenceMissing: nil,
		},
		bson.M{
			"$set": bson.M{fieldPresenceMissing: when},
		},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// CreateBatchOperation stores a new batch operation
func (db *DataStoreMongo) CreateBatchOperation(
	ctx context.Context,
	operation *model.BatchOperation,
) error {
	coll := db.database(ctx).Collection(BatchOperationsCollectionName)

	_, err := coll.InsertOne(ctx, operation)
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrOperationExists
	}
	return err
}

// GetBatchOperation returns a batch operation by token
func (db *DataStoreMongo) GetBatchOperation(
	ctx context.Context,
	token string,
) (*model.BatchOperation, error) {
	coll := db.database(ctx).Collection(BatchOperationsCollectionName)

	cur := coll.FindOne(ctx, bson.M{"_id": token})

	operation := &model.BatchOperation{}
	if err := cur.Decode(operation); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return operation, nil
}

// CreateBatchElements inserts the elements of one operation. Elements that
// exist already (from an earlier delivery of the same expansion message)
// are skipped so the write converges.
func (db *DataStoreMongo) CreateBatchElements(
	ctx context.Context,
	elements []model.BatchElement,
) error {
	coll := db.database(ctx).Collection(BatchElementsCollectionName)

	docs := make([]interface{}, len(elements))
	for i := range elements {
		docs[i] = elements[i]
	}
	insertOpts := mopts.InsertMany().SetOrdered(false)
	_, err := coll.InsertMany(ctx, docs, insertOpts)
	if err != nil {
		if bulkErr, ok := err.(mongo.BulkWriteException); ok {
			for _, we := range bulkErr.WriteErrors {
				if !we.HasErrorCode(duplicateKeyErrorCode) {
					return err
				}
			}
			return nil
		}
		return err
	}
	return nil
}

// GetBatchElement returns one element by (operation, device) pair
func (db *DataStoreMongo) GetBatchElement(
	ctx context.Context,
	operationToken, deviceToken string,
) (*model.BatchElement, error) {
	coll := db.database(ctx).Collection(BatchElementsCollectionName)

	cur := coll.FindOne(ctx, bson.M{
		fieldOperationToken: operationToken,
		fieldDeviceToken:    deviceToken,
	})

	element := &model.BatchElement{}
	if err := cur.Decode(element); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return element, nil
}

// ListBatchElements returns the elements of an operation in index order
func (db *DataStoreMongo) ListBatchElements(
	ctx context.Context,
	operationToken string,
	skip, limit int64,
) ([]model.BatchElement, error) {
	coll := db.database(ctx).Collection(BatchElementsCollectionName)

	findOpts := mopts.Find().
		SetSort(bson.D{{Key: fieldIndex, Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := coll.Find(ctx,
		bson.M{fieldOperationToken: operationToken}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var elements []model.BatchElement
	if err := cur.All(ctx, &elements); err != nil {
		return nil, err
	}
	return elements, nil
}

// SetBatchElementResult records the terminal status of an element. The
// filter on the unprocessed status makes a terminal element immutable.
func (db *DataStoreMongo) SetBatchElementResult(
	ctx context.Context,
	operationToken, deviceToken string,
	status model.ElementStatus,
	reason string,
	processedAt time.Time,
) (bool, error) {
	coll := db.database(ctx).Collection(BatchElementsCollectionName)

	res, err := coll.UpdateOne(ctx,
		bson.M{
			fieldOperationToken: operationToken,
			fieldDeviceToken:    deviceToken,
			fieldStatus:         model.ElementStatusUnprocessed,
		},
		bson.M{
			"$set": bson.M{
				fieldStatus:      status,
				fieldReason:      reason,
				fieldProcessedTs: processedAt,
			},
		},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// GetBatchOperationStatus derives the status of an operation from its
// element statuses
func (db *DataStoreMongo) GetBatchOperationStatus(
	ctx context.Context,
	token string,
) (*model.BatchOperationStatus, error) {
	coll := db.database(ctx).Collection(BatchElementsCollectionName)

	cur, err := coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{fieldOperationToken: token}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$" + fieldStatus,
			"count": bson.M{"$sum": 1},
		}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var counts []struct {
		Status model.ElementStatus `bson:"_id"`
		Count  int64               `bson:"count"`
	}
	if err := cur.All(ctx, &counts); err != nil {
		return nil, err
	}

	status := &model.BatchOperationStatus{Token: token}
	for _, c := range counts {
		status.Total += c.Count
		switch c.Status {
		case model.ElementStatusUnprocessed:
			status.Unprocessed += c.Count
		case model.ElementStatusSucceeded:
			status.Succeeded += c.Count
		case model.ElementStatusFailed:
			status.Failed += c.Count
		}
	}
	status.Complete = status.Total > 0 && status.Unprocessed == 0
	return status, nil
}

// Close disconnects the client
func (db *DataStoreMongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return db.client.Disconnect(ctx)
}
