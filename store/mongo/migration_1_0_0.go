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

	"github.com/mendersoftware/go-lib-micro/mongo/migrate"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	mopts "go.mongodb.org/mongo-driver/mongo/options"
)

type migration1_0_0 struct {
	client *mongo.Client
	db     string
}

// Up creates the indexes backing state lookups, presence scans and the
// per-(operation, device) element uniqueness the expansion relies on
func (m *migration1_0_0) Up(from migrate.Version) error {
	ctx := context.Background()
	database := m.client.Database(m.db)

	collStates := database.Collection(DeviceStatesCollectionName)
	idxStates := collStates.Indexes()

	indexOptions := mopts.Index()
	indexOptions.SetName("assignment_id")
	indexOptions.SetUnique(true)
	assignmentIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: fieldAssignmentID, Value: 1}},
		Options: indexOptions,
	}
	if _, err := idxStates.CreateOne(ctx, assignmentIndex); err != nil {
		return err
	}

	indexOptions = mopts.Index()
	indexOptions.SetName("presence_scan")
	presenceIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: fieldPresenceMissing, Value: 1},
			{Key: fieldLastInteraction, Value: 1},
		},
		Options: indexOptions,
	}
	if _, err := idxStates.CreateOne(ctx, presenceIndex); err != nil {
		return err
	}

	collElements := database.Collection(BatchElementsCollectionName)
	idxElements := collElements.Indexes()

	indexOptions = mopts.Index()
	indexOptions.SetName("operation_token_device_token")
	indexOptions.SetUnique(true)
	elementIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: fieldOperationToken, Value: 1},
			{Key: fieldDeviceToken, Value: 1},
		},
		Options: indexOptions,
	}
	if _, err := idxElements.CreateOne(ctx, elementIndex); err != nil {
		return err
	}

	indexOptions = mopts.Index()
	indexOptions.SetName("operation_token_index")
	orderIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: fieldOperationToken, Value: 1},
			{Key: fieldIndex, Value: 1},
		},
		Options: indexOptions,
	}
	_, err := idxElements.CreateOne(ctx, orderIndex)
	return err
}

func (m *migration1_0_0) Version() migrate.Version {
	return migrate.MakeVersion(1, 0, 0)
}
