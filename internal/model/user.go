package model

type UserRole string

const (
	Student UserRole = "student"
	Parent  UserRole = "parent"
	Teacher UserRole = "teacher"
	Admin   UserRole = "admin"
)
