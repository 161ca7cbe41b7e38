package model

import "time"

// User represents a member or staff account as stored in the `user`
// table.  Each field corresponds to a column in the database.  The json
// tags are omitted here because these structs are used internally by the
// repository layer; handlers define separate response types with
// appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier of the user.
//  UUID         – external identifier handed to clients (never the row id).
//  RoleID       – foreign key into the role table.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  FCMToken     – Firebase device token for push delivery (nullable).
//  IsActive     – whether the account may enter the gym or sign in.
//  LastAccess   – timestamp of the last granted QR entry.
type User struct {
    ID           uint64     // user.id
    UUID         string     // user.uuid
    RoleID       uint64     // user.role_id (references role.id)
    Email        string     // user.email
    PasswordHash string     // user.password
    FCMToken     *string    // user.fcm (nullable)
    IsActive     bool       // user.is_active
    LastAccess   *time.Time // user.last_access (nullable)
    CreatedAt    time.Time  // user.created_at
    UpdatedAt    time.Time  // user.updated_at
}

// Role maps a small integer ID to a role name.  Role rows are static
// reference data: 1 admin, 2 receptionist, 3 coach, 4 manager, 5 client,
// 6 maintenance.  Roles relate many-to-many with Permission through the
// role_permission pivot table.
type Role struct {
    ID          uint64 // role.id
    Name        string // role.name
    Description string // role.description
}

// Permission names a single capability.  Permissions are assigned to
// roles through the role_permission pivot and are not mutated at runtime.
type Permission struct {
    ID          uint64  // permission.id
    Name        string  // permission.name
    Description *string // permission.description (nullable)
}
