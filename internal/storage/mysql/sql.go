package mysql

// -----------------------------------------------------------------------------
// USERS
// -----------------------------------------------------------------------------

const insertUserSQL = `
INSERT INTO users (name, email, password_hash, role, status, profile_image)
VALUES (?, ?, ?, ?, ?, ?)
`

const selectUserSQL = `
SELECT id, name, email, password_hash, role, status, profile_image, created_at
FROM users
`

const updateUserSQL = `
UPDATE users
SET name = ?, email = ?, role = ?, status = ?, profile_image = ?
WHERE id = ?
`

const deleteUserSQL = `DELETE FROM users WHERE id = ?`

// -----------------------------------------------------------------------------
// CATEGORIES
// -----------------------------------------------------------------------------

const insertCategorySQL = `
INSERT INTO categories (name, images) VALUES (?, ?)
`

const selectCategorySQL = `
SELECT id, name, images, created_at FROM categories
`

const updateCategorySQL = `
UPDATE categories SET name = ?, images = ? WHERE id = ?
`

const deleteCategorySQL = `DELETE FROM categories WHERE id = ?`

// -----------------------------------------------------------------------------
// PACKAGES
// -----------------------------------------------------------------------------

const insertPackageSQL = `
INSERT INTO packages (name, description, price, category_id, status, features, itinerary, images)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

const selectPackageSQL = `
SELECT id, name, description, price, category_id, status, features, itinerary, images, created_at
FROM packages
`

const updatePackageSQL = `
UPDATE packages
SET name = ?, description = ?, price = ?, category_id = ?, status = ?,
    features = ?, itinerary = ?, images = ?
WHERE id = ?
`

const deletePackageSQL = `DELETE FROM packages WHERE id = ?`

// -----------------------------------------------------------------------------
// BOOKINGS
// -----------------------------------------------------------------------------

const insertBookingSQL = `
INSERT INTO bookings (reference, user_id, package_id, travel_date, travelers, total_price, status)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

const selectBookingSQL = `
SELECT id, reference, user_id, package_id, travel_date, travelers, total_price, status, created_at
FROM bookings
`

const updateBookingStatusSQL = `UPDATE bookings SET status = ? WHERE id = ?`

// -----------------------------------------------------------------------------
// REVIEWS
// -----------------------------------------------------------------------------

const insertReviewSQL = `
INSERT INTO reviews (user_id, package_id, comment, rating)
VALUES (?, ?, ?, ?)
`

const selectReviewSQL = `
SELECT id, user_id, package_id, comment, rating, created_at
FROM reviews
`

const updateReviewSQL = `
UPDATE reviews SET comment = ?, rating = ?, package_id = ? WHERE id = ?
`

const deleteReviewSQL = `DELETE FROM reviews WHERE id = ?`
