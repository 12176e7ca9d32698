package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"famline/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// Seeder represents a database seeder
type Seeder struct {
	Name        string
	Description string
	Seed        func(*mongo.Database) error
}

// seeders contains all database seeders
var seeders = []Seeder{
	{
		Name:        "system_templates",
		Description: "Create system preference templates",
		Seed:        seedSystemTemplates,
	},
	{
		Name:        "demo_account",
		Description: "Create demo account with groups and recipients for development",
		Seed:        seedDemoAccount,
	},
}

// RunSeeders executes all database seeders
func RunSeeders(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Check if seeders have already been run
	seedersCol := db.Collection("seeders")
	count, err := seedersCol.CountDocuments(ctx, bson.M{})
	if err == nil && count > 0 {
		logrus.Info("🌱 Seeders already run, skipping...")
		return nil
	}

	logrus.Info("🌱 Running database seeders...")

	for _, seeder := range seeders {
		logrus.Infof("🔄 Running seeder: %s", seeder.Name)

		if err := seeder.Seed(db); err != nil {
			logrus.Errorf("❌ Seeder %s failed: %v", seeder.Name, err)
			continue // Continue with other seeders
		}

		_, err := seedersCol.InsertOne(ctx, bson.M{
			"name":      seeder.Name,
			"createdAt": time.Now(),
		})
		if err != nil {
			logrus.Warnf("Failed to record seeder %s: %v", seeder.Name, err)
		}

		logrus.Infof("✅ Seeder %s completed", seeder.Name)
	}

	logrus.Info("🌱 All seeders completed")
	return nil
}

// seedSystemTemplates creates the built-in preference templates
func seedSystemTemplates(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	templatesCol := db.Collection("preference_templates")

	count, err := templatesCol.CountDocuments(ctx, bson.M{"isSystem": true})
	if err == nil && count > 0 {
		return nil // System templates already exist
	}

	now := time.Now()
	templates := []interface{}{
		bson.M{
			"_id":         primitive.NewObjectID(),
			"name":        "Everything",
			"description": "Every update on every channel",
			"settings": bson.M{
				"frequency":    models.FrequencyEveryUpdate,
				"channels":     []string{models.ChannelEmail, models.ChannelSMS},
				"contentTypes": []string{models.ContentTypePhotos, models.ContentTypeText, models.ContentTypeVideo, models.ContentTypeMilestones},
			},
			"isSystem":  true,
			"createdAt": now,
			"updatedAt": now,
		},
		bson.M{
			"_id":         primitive.NewObjectID(),
			"name":        "Weekly photos only",
			"description": "One weekly email digest with photos",
			"settings": bson.M{
				"frequency":    models.FrequencyWeeklyDigest,
				"channels":     []string{models.ChannelEmail},
				"contentTypes": []string{models.ContentTypePhotos},
			},
			"isSystem":  true,
			"createdAt": now,
			"updatedAt": now,
		},
		bson.M{
			"_id":         primitive.NewObjectID(),
			"name":        "Milestones only",
			"description": "Only milestone updates, by email",
			"settings": bson.M{
				"frequency":    models.FrequencyMilestones,
				"channels":     []string{models.ChannelEmail},
				"contentTypes": []string{models.ContentTypeMilestones},
			},
			"isSystem":  true,
			"createdAt": now,
			"updatedAt": now,
		},
	}

	_, err = templatesCol.InsertMany(ctx, templates)
	return err
}

// seedDemoAccount creates a demo parent with default groups, a few
// recipients, and memberships so local development has data to work with
func seedDemoAccount(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	usersCol := db.Collection("users")

	count, err := usersCol.CountDocuments(ctx, bson.M{"email": "demo@famline.app"})
	if err == nil && count > 0 {
		return nil // Demo account already exists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("demo123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	ownerID := primitive.NewObjectID()

	_, err = usersCol.InsertOne(ctx, bson.M{
		"_id":                 ownerID,
		"firstName":           "Demo",
		"lastName":            "Parent",
		"email":               "demo@famline.app",
		"password":            string(hashedPassword),
		"isVerified":          true,
		"isActive":            true,
		"defaultGroupsSeeded": true,
		"role":                models.RoleUser,
		"createdAt":           now,
		"updatedAt":           now,
	})
	if err != nil {
		return fmt.Errorf("failed to create demo user: %w", err)
	}

	groupsCol := db.Collection("groups")
	groupIDs := make(map[string]primitive.ObjectID, len(models.DefaultGroupNames))
	for _, name := range models.DefaultGroupNames {
		groupID := primitive.NewObjectID()
		groupIDs[name] = groupID

		_, err = groupsCol.InsertOne(ctx, bson.M{
			"_id":       groupID,
			"ownerId":   ownerID,
			"name":      name,
			"nameLower": strings.ToLower(name),
			"isDefault": true,
			"defaults": bson.M{
				"frequency":    models.SystemDefaultFrequency,
				"channels":     models.SystemDefaultChannels,
				"contentTypes": models.SystemDefaultContentTypes,
			},
			"memberCount": 0,
			"maxMembers":  models.DefaultMaxMembersPerGroup,
			"createdAt":   now,
			"updatedAt":   now,
		})
		if err != nil {
			return fmt.Errorf("failed to create default group %s: %w", name, err)
		}
	}

	recipientsCol := db.Collection("recipients")
	membershipsCol := db.Collection("group_memberships")

	demoRecipients := []struct {
		name         string
		relationship string
		email        string
		group        string
	}{
		{"Grandma June", models.RelationshipGrandparent, "june@example.com", "Immediate Family"},
		{"Uncle Rob", models.RelationshipUncle, "rob@example.com", "Extended Family"},
		{"Sara Chen", models.RelationshipFriend, "sara@example.com", "Friends"},
	}

	for _, dr := range demoRecipients {
		recipientID := primitive.NewObjectID()
		_, err = recipientsCol.InsertOne(ctx, bson.M{
			"_id":          recipientID,
			"ownerId":      ownerID,
			"name":         dr.name,
			"relationship": dr.relationship,
			"email":        dr.email,
			"isActive":     true,
			"createdAt":    now,
			"updatedAt":    now,
		})
		if err != nil {
			return fmt.Errorf("failed to create demo recipient %s: %w", dr.name, err)
		}

		_, err = membershipsCol.InsertOne(ctx, bson.M{
			"_id":         primitive.NewObjectID(),
			"groupId":     groupIDs[dr.group],
			"recipientId": recipientID,
			"ownerId":     ownerID,
			"role":        "member",
			"overrides":   bson.M{},
			"isActive":    true,
			"createdAt":   now,
			"updatedAt":   now,
		})
		if err != nil {
			return fmt.Errorf("failed to create demo membership for %s: %w", dr.name, err)
		}

		if _, err := groupsCol.UpdateOne(ctx,
			bson.M{"_id": groupIDs[dr.group]},
			bson.M{"$inc": bson.M{"memberCount": 1}},
		); err != nil {
			logrus.Warnf("Failed to bump member count for %s: %v", dr.group, err)
		}
	}

	return nil
}

